package sound

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCatalogEntriesAreWellFormed(t *testing.T) {
	sounds := Catalog()
	if len(sounds) == 0 {
		t.Fatal("catalog is empty")
	}

	seen := make(map[string]bool)
	for _, s := range sounds {
		if s.ID == "" || s.Name == "" || s.Description == "" {
			t.Errorf("catalog entry missing fields: %+v", s)
		}
		if seen[s.ID] {
			t.Errorf("duplicate catalog id %q", s.ID)
		}
		seen[s.ID] = true
		if !strings.HasPrefix(s.File, "sounds/alarms/") {
			t.Errorf("sound %q file %q does not follow sounds/alarms/<slug> convention", s.ID, s.File)
		}
	}

	if !seen[DefaultSoundID] {
		t.Errorf("default sound %q not in catalog", DefaultSoundID)
	}
}

func TestLookup(t *testing.T) {
	if _, ok := Lookup("gentle-rise"); !ok {
		t.Error("expected gentle-rise in catalog")
	}
	if _, ok := Lookup("nope"); ok {
		t.Error("expected unknown id to miss")
	}
}

func TestPlayUnknownSoundIsNonFatal(t *testing.T) {
	p := NewPlayer(t.TempDir())
	// Must log and no-op without touching the audio device.
	if err := p.Play("does-not-exist", 80); err != nil {
		t.Errorf("unknown sound should no-op, got error: %v", err)
	}
	p.Stop() // idempotent with nothing playing
}

func TestPlayRejectsMismatchedFormat(t *testing.T) {
	cases := []struct {
		name       string
		sampleRate int
		channels   int
		bitDepth   int
	}{
		{"mono", 44100, 1, 16},
		{"low rate", 22050, 2, 16},
		{"8-bit", 44100, 2, 8},
	}

	entry, ok := Lookup(DefaultSoundID)
	if !ok {
		t.Fatal("default sound missing from catalog")
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, filepath.FromSlash(entry.File))
			if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
				t.Fatal(err)
			}
			data := buildWAV(tc.sampleRate, tc.channels, tc.bitDepth, make([]byte, 16))
			if err := os.WriteFile(path, data, 0644); err != nil {
				t.Fatal(err)
			}

			// The format check runs before the audio device is opened, so
			// a mis-encoded asset errors instead of playing pitched.
			p := NewPlayer(dir)
			err := p.Play(DefaultSoundID, 80)
			if err == nil {
				t.Fatal("expected format mismatch error")
			}
			if !strings.Contains(err.Error(), "playback needs") {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestClampVolume(t *testing.T) {
	cases := []struct {
		in   int
		want float64
	}{
		{-5, 0}, {0, 0}, {50, 0.5}, {100, 1}, {250, 1},
	}
	for _, tc := range cases {
		if got := clampVolume(tc.in); got != tc.want {
			t.Errorf("clampVolume(%d) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

// buildWAV assembles a minimal PCM WAV file for parser tests.
func buildWAV(sampleRate int, channels int, bitDepth int, samples []byte) []byte {
	var buf bytes.Buffer
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+len(samples)))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&buf, binary.LittleEndian, uint16(channels))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate*channels*bitDepth/8))
	binary.Write(&buf, binary.LittleEndian, uint16(channels*bitDepth/8))
	binary.Write(&buf, binary.LittleEndian, uint16(bitDepth))

	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(len(samples)))
	buf.Write(samples)
	return buf.Bytes()
}

func TestParseWAV(t *testing.T) {
	samples := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	format, got, err := parseWAV(buildWAV(44100, 2, 16, samples))
	if err != nil {
		t.Fatalf("parseWAV failed: %v", err)
	}
	if format.sampleRate != 44100 || format.channels != 2 || format.bitDepth != 16 {
		t.Errorf("unexpected format: %+v", format)
	}
	if !bytes.Equal(got, samples) {
		t.Errorf("samples = %v, want %v", got, samples)
	}
}

func TestParseWAV_Rejects(t *testing.T) {
	cases := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"not riff", []byte("OGGSxxxxxxxxxxxxxxxx")},
		{"truncated", buildWAV(44100, 2, 16, []byte{1, 2, 3, 4})[:20]},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, _, err := parseWAV(tc.data); err == nil {
				t.Error("expected parse error")
			}
		})
	}
}
