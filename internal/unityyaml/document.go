package unityyaml

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/unityscan/depgraph/internal/scanerr"
)

// docHeaderPattern matches a Unity document boundary, e.g.
// "--- !u!1 &100000" or "--- !u!4 &400000 stripped".
var docHeaderPattern = regexp.MustCompile(`^--- !u!(\d+) &(-?\d+)(\s+stripped)?\s*$`)

// rawDocument is one "--- !u!<classId> &<fileId>" block, unparsed.
type rawDocument struct {
	ClassID  int
	FileID   int64
	Stripped bool
	Body     []byte
}

// streamingThresholdBytes is the file size above which splitDocuments
// raises its maximum line length from 1 MiB to 4 MiB. Files of every size
// are scanned line by line.
const streamingThresholdBytes = 16 << 20

// splitDocuments separates a Unity YAML file into its constituent
// "--- !u!" documents by scanning r line by line. size is the file's total
// byte count, used only to pick the scanner's maximum line length (see
// streamingThresholdBytes). Every document body is copied into the
// returned slice, so once splitting finishes the file's document content
// is held in memory in full.
func splitDocuments(r io.Reader, size int64) ([]rawDocument, error) {
	var docs []rawDocument
	var current *rawDocument
	var body bytes.Buffer

	flush := func() {
		if current != nil {
			current.Body = append([]byte(nil), body.Bytes()...)
			docs = append(docs, *current)
		}
		body.Reset()
	}

	scanner := bufio.NewScanner(r)
	maxBuf := 1 << 20
	if size > streamingThresholdBytes {
		maxBuf = 4 << 20
	}
	scanner.Buffer(make([]byte, 0, 64*1024), maxBuf)

	for scanner.Scan() {
		line := scanner.Text()
		if m := docHeaderPattern.FindStringSubmatch(line); m != nil {
			flush()
			classID, _ := strconv.Atoi(m[1])
			fileID, _ := strconv.ParseInt(m[2], 10, 64)
			current = &rawDocument{ClassID: classID, FileID: fileID, Stripped: m[3] != ""}
			continue
		}
		if strings.HasPrefix(line, "%YAML") || strings.HasPrefix(line, "%TAG") {
			continue
		}
		if current != nil {
			body.WriteString(line)
			body.WriteByte('\n')
		}
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan unity yaml document boundaries: %w", err)
	}
	return docs, nil
}

// decodeBody decodes a single document body into a generic tree, stripping
// the single root component-name key (e.g. "MonoBehaviour:") and returning
// its value plus that key's name.
func decodeBody(body []byte) (string, map[string]any, error) {
	var root map[string]any
	if err := yaml.Unmarshal(body, &root); err != nil {
		return "", nil, &scanerr.ParseError{Kind: scanerr.ParseErrMalformedYAML, Detail: err.Error()}
	}
	for k, v := range root {
		if m, ok := v.(map[string]any); ok {
			return k, m, nil
		}
		return k, nil, nil
	}
	return "", nil, nil
}
