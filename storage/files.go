package storage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// publicPrefix ist der Pfad, unter dem der Store statisch ausgeliefert wird.
const publicPrefix = "/uploads/papers"

// FileStore legt hochgeladene PDFs auf der lokalen Platte ab. Gespeicherte
// Pfade werden als öffentliche Pfade (/uploads/papers/...) geführt und für
// Dateioperationen wieder in absolute Pfade aufgelöst.
type FileStore struct {
	dir string
}

// NewFileStore erstellt den Store und legt das Verzeichnis bei Bedarf an.
func NewFileStore(baseDir string) (*FileStore, error) {
	dir, err := filepath.Abs(filepath.Join(baseDir, "papers"))
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileStore{dir: dir}, nil
}

// Dir gibt das absolute Ablageverzeichnis zurück.
func (s *FileStore) Dir() string {
	return s.dir
}

// Save schreibt den Inhalt unter einem kollisionssicheren Namen
// (Zeitstempel plus Zufallssuffix, Original-Endung bleibt erhalten)
// und gibt den öffentlichen Pfad zurück.
func (s *FileStore) Save(originalName string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	if ext == "" {
		ext = ".pdf"
	}
	name := fmt.Sprintf("paper-%d-%s%s", time.Now().UnixMilli(), uuid.NewString()[:8], ext)

	f, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return publicPrefix + "/" + name, nil
}

// Remove löscht die Datei hinter einem öffentlichen Pfad.
// Eine bereits fehlende Datei ist kein Fehler.
func (s *FileStore) Remove(publicPath string) error {
	abs, ok := s.Abs(publicPath)
	if !ok {
		return nil
	}
	if err := os.Remove(abs); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Abs löst einen öffentlichen Pfad in den absoluten Dateipfad auf.
func (s *FileStore) Abs(publicPath string) (string, bool) {
	name := strings.TrimPrefix(publicPath, publicPrefix+"/")
	if name == "" || name == publicPath || strings.Contains(name, "/") {
		return "", false
	}
	return filepath.Join(s.dir, name), true
}

// List gibt die öffentlichen Pfade aller gespeicherten Dateien zurück.
func (s *FileStore) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		paths = append(paths, publicPrefix+"/"+e.Name())
	}
	return paths, nil
}

// ModTime gibt den letzten Änderungszeitpunkt einer gespeicherten Datei zurück.
func (s *FileStore) ModTime(publicPath string) (time.Time, error) {
	abs, ok := s.Abs(publicPath)
	if !ok {
		return time.Time{}, fs.ErrNotExist
	}
	info, err := os.Stat(abs)
	if err != nil {
		return time.Time{}, err
	}
	return info.ModTime(), nil
}
