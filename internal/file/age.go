package file

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"strings"
	"time"

	"filippo.io/age"
)

// AgeSuffix marks input files encrypted with an age passphrase.
const AgeSuffix = ".age"

// DecryptFS serves name from name+".age" when only the encrypted file exists.
type DecryptFS struct {
	FS       fs.FS
	Password string
}

// Open implements fs.FS.
func (d *DecryptFS) Open(name string) (fs.File, error) {
	f, err := d.FS.Open(name)
	if err == nil || d.Password == "" || strings.HasSuffix(name, AgeSuffix) {
		return f, err
	}
	ciphertext, encErr := fs.ReadFile(d.FS, name+AgeSuffix)
	if encErr != nil {
		return nil, err
	}
	plaintext, encErr := decrypt(ciphertext, d.Password)
	if encErr != nil {
		return nil, &fs.PathError{Op: "open", Path: name, Err: encErr}
	}
	return &memFile{Reader: bytes.NewReader(plaintext), name: name, size: int64(len(plaintext))}, nil
}

func decrypt(ciphertext []byte, pw string) ([]byte, error) {
	id, err := age.NewScryptIdentity(pw)
	if err != nil {
		return nil, fmt.Errorf("could not build scrypt identity: %w", err)
	}
	plaintextReader, err := age.Decrypt(bytes.NewReader(ciphertext), id)
	if err != nil {
		return nil, fmt.Errorf("could not start decrypting: %w", err)
	}
	plaintext, err := io.ReadAll(plaintextReader)
	if err != nil {
		return nil, fmt.Errorf("could not finish decrypting: %w", err)
	}
	return plaintext, nil
}

// Encrypt encrypts data with a passphrase, for preparing files DecryptFS can read.
func Encrypt(w io.Writer, data []byte, pw string) error {
	r, err := age.NewScryptRecipient(pw)
	if err != nil {
		return fmt.Errorf("could not build scrypt recipient: %w", err)
	}
	enc, err := age.Encrypt(w, r)
	if err != nil {
		return fmt.Errorf("could not start encrypting: %w", err)
	}
	if _, err := enc.Write(data); err != nil {
		return fmt.Errorf("could not encrypt: %w", err)
	}
	return enc.Close()
}

type memFile struct {
	*bytes.Reader
	name string
	size int64
}

func (m *memFile) Stat() (fs.FileInfo, error) { return m, nil }
func (m *memFile) Close() error               { return nil }

func (m *memFile) Name() string       { return m.name }
func (m *memFile) Size() int64        { return m.size }
func (m *memFile) Mode() fs.FileMode  { return 0o444 }
func (m *memFile) ModTime() time.Time { return time.Time{} }
func (m *memFile) IsDir() bool        { return false }
func (m *memFile) Sys() any           { return nil }
