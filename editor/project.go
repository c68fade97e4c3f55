package editor

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Project is the persistence boundary: the plain data handed to exporters
// and the audio scheduler, and accepted back from the save layer. Selection
// and history are deliberately absent; both reset on load.
type Project struct {
	Notes    []Note   `json:"notes"`
	Tempo    int      `json:"tempo"`
	GridSnap GridSnap `json:"gridSnap"`
}

// Snapshot captures the current editor state as a Project plus the
// playhead position for scheduling consumers.
func Snapshot(s *Store, t *Transport) (Project, float64) {
	return Project{
		Notes:    s.Notes(),
		Tempo:    t.Tempo(),
		GridSnap: s.GridSnap(),
	}, t.Playhead()
}

// Restore loads a Project into the store and transport. History is cleared
// and the selection emptied; the restored notes are not undoable back past
// this point.
func Restore(p Project, s *Store, t *Transport) {
	s.Replace(p.Notes)
	s.SetGridSnap(p.GridSnap)
	if p.Tempo > 0 {
		t.SetTempo(p.Tempo)
	}
}

// SaveInfo describes a saved project file for listing.
type SaveInfo struct {
	Filename  string
	Timestamp time.Time
}

// ProjectsDir returns the projects directory path.
func ProjectsDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "go-pianoroll", "projects"), nil
}

func projectDir(name string) (string, error) {
	base, err := ProjectsDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, sanitizeFilename(name)), nil
}

// ListSaves returns timestamped saves for a project, newest first.
func ListSaves(projectName string) ([]SaveInfo, error) {
	dir, err := projectDir(projectName)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []SaveInfo{}, nil
		}
		return nil, err
	}

	var saves []SaveInfo
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		ts, err := time.Parse("2006-01-02_15-04-05", strings.TrimSuffix(name, ".json"))
		if err != nil {
			continue
		}
		saves = append(saves, SaveInfo{Filename: name, Timestamp: ts})
	}

	sort.Slice(saves, func(i, j int) bool {
		return saves[i].Timestamp.After(saves[j].Timestamp)
	})
	return saves, nil
}

// SaveProject writes a timestamped save under the project's directory.
func SaveProject(projectName string, p Project) error {
	if projectName == "" {
		projectName = "untitled"
	}
	dir, err := projectDir(projectName)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}

	name := time.Now().Format("2006-01-02_15-04-05") + ".json"
	return os.WriteFile(filepath.Join(dir, name), data, 0644)
}

// LoadProject reads a specific save, or the most recent one if filename is
// empty.
func LoadProject(projectName, filename string) (Project, error) {
	dir, err := projectDir(projectName)
	if err != nil {
		return Project{}, err
	}

	if filename == "" {
		saves, err := ListSaves(projectName)
		if err != nil || len(saves) == 0 {
			return Project{}, fmt.Errorf("no saves found in project %s", projectName)
		}
		filename = saves[0].Filename
	}

	data, err := os.ReadFile(filepath.Join(dir, filename))
	if err != nil {
		return Project{}, err
	}

	var p Project
	if err := json.Unmarshal(data, &p); err != nil {
		return Project{}, err
	}
	return p, nil
}

// sanitizeFilename strips characters that are problematic in filenames.
func sanitizeFilename(name string) string {
	r := strings.NewReplacer(
		" ", "-", "/", "-", "\\", "-", ":", "-",
		"*", "", "?", "", "\"", "", "<", "", ">", "", "|", "",
	)
	return r.Replace(name)
}
