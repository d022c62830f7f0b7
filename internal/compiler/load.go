package compiler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"

	"github.com/roach88/chipsim/internal/ir"
)

// DefaultName is used for projects and chips saved without a name.
const DefaultName = "Unnamed"

var (
	// ErrFileTooNew is returned for project or chip files written by a
	// newer version than ir.FileVersion.
	ErrFileTooNew = errors.New("file version is too new")

	// ErrUnknownFileKind is returned when the "file" field is neither
	// "project" nor "chip".
	ErrUnknownFileKind = errors.New("unknown file kind")

	// ErrNoChips is returned by LoadPath when no chip files are found.
	ErrNoChips = errors.New("no chip files found")
)

// chipExtensions lists the file extensions LoadPath picks up.
var chipExtensions = map[string]bool{
	".json": true,
	".yaml": true,
	".yml":  true,
	".cue":  true,
}

// LoadResult holds the chip definitions read from one or more files.
type LoadResult struct {
	Chips   []*ir.ChipDefinition
	Project *ir.ProjectFile // last project file read, if any
	Files   []string
}

// LoadPath reads chip definitions from a file or, recursively, from every
// .json, .yaml, .yml and .cue file under a directory in lexical order.
func LoadPath(path string) (*LoadResult, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	files := []string{path}
	if info.IsDir() {
		files, err = FindChipFiles(path)
		if err != nil {
			return nil, err
		}
		if len(files) == 0 {
			return nil, fmt.Errorf("%s: %w", path, ErrNoChips)
		}
	}

	result := &LoadResult{Files: files}
	for _, f := range files {
		chips, project, err := LoadFile(f)
		if err != nil {
			return nil, err
		}
		result.Chips = append(result.Chips, chips...)
		if project != nil {
			result.Project = project
		}
	}
	return result, nil
}

// FindChipFiles walks dir and returns all chip file paths, sorted.
func FindChipFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && chipExtensions[strings.ToLower(filepath.Ext(path))] {
			files = append(files, path)
		}
		return nil
	})
	sort.Strings(files)
	return files, err
}

// LoadFile reads one chip file. JSON and YAML files may hold a project
// file, a chip file or a bare chip definition; CUE files hold a "chip"
// struct of definitions keyed by id. The project is returned only for
// project files.
func LoadFile(path string) ([]*ir.ChipDefinition, *ir.ProjectFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".cue" {
		chips, err := decodeCUE(data, path)
		return chips, nil, err
	}

	var sniff, unmarshal func([]byte, any) error
	switch ext {
	case ".json":
		sniff, unmarshal = json.Unmarshal, json.Unmarshal
	case ".yaml", ".yml":
		sniff, unmarshal = yaml.Unmarshal, unmarshalYAMLStrict
	default:
		return nil, nil, fmt.Errorf("%s: unsupported file extension %q", path, ext)
	}

	chips, project, err := decodeDocument(data, sniff, unmarshal)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	return chips, project, nil
}

// unmarshalYAMLStrict decodes a single YAML document, rejecting fields the
// target type does not declare. An empty document leaves v untouched.
func unmarshalYAMLStrict(data []byte, v any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// decodeDocument reads a project file, a chip file or a bare definition,
// told apart by the "file" field. sniff reads only that header; the body
// is decoded with unmarshal.
func decodeDocument(data []byte, sniff, unmarshal func([]byte, any) error) ([]*ir.ChipDefinition, *ir.ProjectFile, error) {
	var header struct {
		Version int    `json:"version" yaml:"version"`
		File    string `json:"file" yaml:"file"`
	}
	if err := sniff(data, &header); err != nil {
		return nil, nil, err
	}
	if header.Version > ir.FileVersion {
		return nil, nil, fmt.Errorf("%w: version %d, newest supported is %d", ErrFileTooNew, header.Version, ir.FileVersion)
	}

	switch header.File {
	case ir.FileProject:
		var project ir.ProjectFile
		if err := unmarshal(data, &project); err != nil {
			return nil, nil, err
		}
		if project.Name == "" {
			project.Name = DefaultName
		}
		chips := make([]*ir.ChipDefinition, len(project.Chips))
		for i := range project.Chips {
			chips[i] = withDefaults(&project.Chips[i])
		}
		return chips, &project, nil

	case ir.FileChip:
		var file ir.ChipFile
		if err := unmarshal(data, &file); err != nil {
			return nil, nil, err
		}
		return []*ir.ChipDefinition{withDefaults(&file.Chip)}, nil, nil

	case "":
		var def ir.ChipDefinition
		if err := unmarshal(data, &def); err != nil {
			return nil, nil, err
		}
		return []*ir.ChipDefinition{withDefaults(&def)}, nil, nil

	default:
		return nil, nil, fmt.Errorf("%w %q", ErrUnknownFileKind, header.File)
	}
}

func withDefaults(def *ir.ChipDefinition) *ir.ChipDefinition {
	if def.Name == "" {
		def.Name = DefaultName
	}
	return def
}

// decodeCUE compiles a CUE file and reads every field of its top-level
// "chip" struct, in declaration order.
func decodeCUE(data []byte, path string) ([]*ir.ChipDefinition, error) {
	ctx := cuecontext.New()
	value := ctx.CompileBytes(data, cue.Filename(path))
	if err := value.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	chipsVal := value.LookupPath(cue.ParsePath("chip"))
	if !chipsVal.Exists() {
		return nil, &CompileError{Field: "chip", Message: "no chip struct found", Pos: value.Pos()}
	}
	iter, err := chipsVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var chips []*ir.ChipDefinition
	for iter.Next() {
		def, err := CompileChipCUE(iter.Value())
		if err != nil {
			return nil, err
		}
		chips = append(chips, def)
	}
	return chips, nil
}

// MarshalChipFile renders def as a version 0 chip file in JSON.
func MarshalChipFile(def *ir.ChipDefinition) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(ir.ChipFile{Version: ir.FileVersion, File: ir.FileChip, Chip: *def}); err != nil {
		return nil, fmt.Errorf("marshal chip file: %w", err)
	}
	return buf.Bytes(), nil
}
