package adapters

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/klauspost/compress/zip"

	"bundle-resolver/internal/ports"
)

// ManifestPath is the manifest location inside a bundle folder or jar.
const ManifestPath = "META-INF/MANIFEST.MF"

// ManifestFileAdapter reads bundle manifests from folders and jars.
type ManifestFileAdapter struct{}

func NewManifestFileAdapter() ManifestFileAdapter {
	return ManifestFileAdapter{}
}

func (a ManifestFileAdapter) ReadHeaders(path string) (map[string]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg(fmt.Sprintf("bundle not found: %s", path)).
			WithCause(err)
	}
	if info.IsDir() {
		return readFolderManifest(path)
	}
	return readJarManifest(path)
}

func readFolderManifest(dir string) (map[string]string, error) {
	file, err := os.Open(filepath.Join(dir, filepath.FromSlash(ManifestPath)))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeNotFound).
				WithMsg(fmt.Sprintf("no manifest in %s", dir)).
				WithCause(err)
		}
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(fmt.Sprintf("failed to open manifest in %s", dir)).
			WithCause(err)
	}
	defer file.Close()
	return decodeManifest(file)
}

func readJarManifest(jar string) (map[string]string, error) {
	reader, err := zip.OpenReader(jar)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(fmt.Sprintf("failed to open jar %s", jar)).
			WithCause(err)
	}
	defer reader.Close()
	for _, file := range reader.File {
		if !strings.EqualFold(file.Name, ManifestPath) {
			continue
		}
		entry, err := file.Open()
		if err != nil {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg(fmt.Sprintf("failed to read manifest in %s", jar)).
				WithCause(err)
		}
		defer entry.Close()
		return decodeManifest(entry)
	}
	return nil, errbuilder.New().
		WithCode(errbuilder.CodeNotFound).
		WithMsg(fmt.Sprintf("no manifest in %s", jar))
}

// decodeManifest returns the main section of a manifest: "Name: value"
// lines up to the first blank line, where a line starting with a single
// space continues the previous value.
func decodeManifest(reader io.Reader) (map[string]string, error) {
	headers := map[string]string{}
	buffered := bufio.NewReader(reader)
	var name string
	var value strings.Builder
	flush := func() {
		if name != "" {
			headers[name] = strings.TrimSpace(value.String())
		}
		name = ""
		value.Reset()
	}
	for {
		line, err := buffered.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to read manifest").
				WithCause(err)
		}
		line = strings.TrimRight(line, "\r\n")
		switch {
		case strings.HasPrefix(line, " "):
			value.WriteString(line[1:])
		case line == "":
			if err == io.EOF || name != "" || len(headers) > 0 {
				flush()
				return headers, nil
			}
		default:
			flush()
			key, rest, ok := strings.Cut(line, ":")
			if !ok {
				return nil, errbuilder.New().
					WithCode(errbuilder.CodeInvalidArgument).
					WithMsg(fmt.Sprintf("invalid manifest line %q", line))
			}
			name = strings.TrimSpace(key)
			value.WriteString(strings.TrimPrefix(rest, " "))
		}
		if err == io.EOF {
			break
		}
	}
	flush()
	return headers, nil
}

var _ ports.ManifestSourcePort = ManifestFileAdapter{}
