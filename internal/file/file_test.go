package file

import (
	"archive/zip"
	"bytes"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/divVerent/choirsplit/internal/lyrics"
	"github.com/divVerent/choirsplit/internal/processor"
)

const solo = `<museScore version="4.20"><Score><Division>32</Division>
<Part><Staff id="1"/><trackName>Voice</trackName></Part>
<Staff id="1"><Measure><voice>
<TimeSig><sigN>2</sigN><sigD>4</sigD></TimeSig>
<Chord><durationType>half</durationType><Lyrics><text>la</text></Lyrics><Note><pitch>67</pitch></Note></Chord>
</voice></Measure></Staff>
</Score></museScore>`

func TestDecryptFS(t *testing.T) {
	var enc bytes.Buffer
	if err := Encrypt(&enc, []byte(solo), "hunter2"); err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	base := fstest.MapFS{
		"song.mscx.age": {Data: enc.Bytes()},
		"plain.txt":     {Data: []byte("plain")},
	}

	f, err := (&DecryptFS{FS: base, Password: "hunter2"}).Open("song.mscx")
	got, err := io.ReadAll(must(t, f, err))
	if err != nil || string(got) != solo {
		t.Errorf("decrypted: got %q, %v", got, err)
	}
	f, err = (&DecryptFS{FS: base, Password: "hunter2"}).Open("plain.txt")
	got, err = io.ReadAll(must(t, f, err))
	if err != nil || string(got) != "plain" {
		t.Errorf("plain: got %q, %v", got, err)
	}
	if _, err := (&DecryptFS{FS: base, Password: "wrong"}).Open("song.mscx"); err == nil {
		t.Errorf("wrong password: got no error")
	}
	if _, err := (&DecryptFS{FS: base}).Open("song.mscx"); err == nil {
		t.Errorf("no password: got no error")
	}
}

func must[T any](t *testing.T, v T, err error) T {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return v
}

func mscz(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range files {
		f, err := w.Create(name)
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if _, err := io.WriteString(f, content); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	return buf.Bytes()
}

func TestZipUnpacker(t *testing.T) {
	data := mscz(t, map[string]string{
		"META-INF/container.xml": "<container/>",
		"Thumbnails/x.mscx":      "nested",
		"song.mscx":              solo,
	})
	rc, err := ZipUnpacker{}.Unpack(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("Unpack: %v", err)
	}
	defer rc.Close()
	got, _ := io.ReadAll(rc)
	if string(got) != solo {
		t.Errorf("Unpack: got %q", got)
	}

	empty := mscz(t, map[string]string{"readme.txt": "hi"})
	if _, err := (ZipUnpacker{}).Unpack(bytes.NewReader(empty), int64(len(empty))); err == nil {
		t.Errorf("Unpack without mscx: got no error")
	}
}

func TestProcessChecksum(t *testing.T) {
	sum := fmt.Sprintf("%x", sha256.Sum256([]byte(solo)))
	fsys := fstest.MapFS{
		"song.mscx": {Data: []byte(solo)},
		"song.mscz": {Data: mscz(t, map[string]string{"song.mscx": solo})},
	}
	for _, tc := range []struct {
		name    string
		input   string
		sum     string
		wantErr string
	}{
		{name: "fills in", input: "song.mscx"},
		{name: "matches", input: "song.mscx", sum: sum},
		{name: "mismatches", input: "song.mscx", sum: "00", wantErr: "mismatching checksum"},
		{name: "missing", input: "gone.mscx", wantErr: "could not read"},
		{name: "archive", input: "song.mscz"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			opts := &processor.Options{InputFile: tc.input, InputFileSHA256: tc.sum, RehearsalMIDI: true}
			out, err := Process(fsys, nil, opts, nil)
			if tc.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
					t.Fatalf("Process: got %v, want error containing %q", err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Process: %v", err)
			}
			if opts.InputFileSHA256 == "" {
				t.Errorf("checksum not filled in")
			}
			if tc.input == "song.mscx" && opts.InputFileSHA256 != sum {
				t.Errorf("checksum: got %v, want %v", opts.InputFileSHA256, sum)
			}
			if out.MIDI["all"] == nil || out.MIDI["Voice"] == nil {
				t.Errorf("MIDI keys: got %v", len(out.MIDI))
			}
		})
	}
}

func TestTSVCorrector(t *testing.T) {
	dir := t.TempDir()
	dump, fixed := LyricPaths(filepath.Join(dir, "song.mscx"))
	if filepath.Base(dump) != "song_lyrics.tsv" || filepath.Base(fixed) != "song_lyrics_fixed.tsv" {
		t.Fatalf("LyricPaths: got %v, %v", dump, fixed)
	}
	recs := []lyrics.Record{{Staff: 1, Text: "xyzzy", Syllabic: "single"}}

	waited := false
	c := &TSVCorrector{DumpFile: dump, FixedFile: fixed, Wait: func(d, f string) error {
		waited = true
		return nil
	}}
	if _, ok, err := c.CorrectLyrics(recs); err != nil || ok {
		t.Fatalf("CorrectLyrics without fix: got ok=%v, %v", ok, err)
	}
	if !waited {
		t.Errorf("Wait not called")
	}
	if _, err := os.Stat(dump); err != nil {
		t.Errorf("dump not written: %v", err)
	}

	data, err := os.ReadFile(dump)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if err := os.WriteFile(fixed, bytes.Replace(data, []byte("xyzzy"), []byte("plugh"), 1), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	got, ok, err := c.CorrectLyrics(recs)
	if err != nil || !ok {
		t.Fatalf("CorrectLyrics: got ok=%v, %v", ok, err)
	}
	if len(got) != 1 || got[0].Text != "plugh" {
		t.Errorf("CorrectLyrics: got %+v", got)
	}
}

func TestReadConfig(t *testing.T) {
	fsys := fstest.MapFS{
		"empty.yml": {Data: nil},
		"c.yml":     {Data: []byte("resolution: 64\nrehearsal:\n  bpm: 72\n")},
		"bad.yml":   {Data: []byte("resolution: [")},
	}
	for _, name := range []string{"missing.yml", "empty.yml"} {
		c, err := ReadConfig(fsys, name)
		if err != nil || c.Resolution != 0 {
			t.Errorf("ReadConfig(%v): got %+v, %v", name, c, err)
		}
	}
	c, err := ReadConfig(fsys, "c.yml")
	if err != nil || c.Resolution != 64 || c.Rehearsal.BPM != 72 {
		t.Errorf("ReadConfig: got %+v, %v", c, err)
	}
	if _, err := ReadConfig(fsys, "bad.yml"); err == nil {
		t.Errorf("ReadConfig(bad.yml): got no error")
	}
}
