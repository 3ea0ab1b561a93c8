package persist

import (
	"bufio"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/AZOTHAZZA/ZA-MSGAI-ZA/internal/ir"
	"github.com/AZOTHAZZA/ZA-MSGAI-ZA/internal/state"
)

//go:embed snapshot.schema.json
var snapshotSchemaJSON string

var snapshotSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	return jsonschema.CompileString("snapshot.schema.json", snapshotSchemaJSON)
})

// Header identifies an exported snapshot.
type Header struct {
	Version string `json:"version"`
	Engine  string `json:"engine"`
	Clock   int64  `json:"clock"`
	Digest  string `json:"digest"`
}

type snapshotDoc struct {
	Header Header          `json:"header"`
	State  json.RawMessage `json:"state"`
}

// ExportSnapshot writes s to w as zstd-compressed JSON with a digest
// header.
func ExportSnapshot(w io.Writer, s state.State) (Header, error) {
	encoded, err := state.Encode(s)
	if err != nil {
		return Header{}, err
	}
	h := Header{
		Version: ir.StateVersion,
		Engine:  ir.EngineVersion,
		Clock:   s.SystemState.LogicalClock,
		Digest:  ir.StateDigest(encoded),
	}

	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return Header{}, err
	}
	bw := bufio.NewWriter(enc)
	if err := json.NewEncoder(bw).Encode(snapshotDoc{Header: h, State: encoded}); err != nil {
		enc.Close()
		return Header{}, fmt.Errorf("encode snapshot: %w", err)
	}
	if err := bw.Flush(); err != nil {
		enc.Close()
		return Header{}, err
	}
	if err := enc.Close(); err != nil {
		return Header{}, fmt.Errorf("compress snapshot: %w", err)
	}
	return h, nil
}

// ImportSnapshot reads a snapshot written by ExportSnapshot. The document
// must satisfy the snapshot schema and its digest must match the state.
func ImportSnapshot(r io.Reader) (state.State, Header, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return state.State{}, Header{}, err
	}
	defer dec.Close()

	raw, err := io.ReadAll(dec)
	if err != nil {
		return state.State{}, Header{}, fmt.Errorf("decompress snapshot: %w", err)
	}

	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return state.State{}, Header{}, fmt.Errorf("parse snapshot: %w", err)
	}
	schema, err := snapshotSchema()
	if err != nil {
		return state.State{}, Header{}, fmt.Errorf("compile snapshot schema: %w", err)
	}
	if err := schema.Validate(generic); err != nil {
		return state.State{}, Header{}, fmt.Errorf("snapshot schema: %w", err)
	}

	var doc snapshotDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return state.State{}, Header{}, fmt.Errorf("parse snapshot: %w", err)
	}
	s, err := state.Decode(doc.State)
	if err != nil {
		return state.State{}, Header{}, err
	}

	encoded, err := state.Encode(s)
	if err != nil {
		return state.State{}, Header{}, err
	}
	if got := ir.StateDigest(encoded); got != doc.Header.Digest {
		return state.State{}, Header{}, fmt.Errorf("snapshot digest mismatch: header %s, state %s", doc.Header.Digest, got)
	}
	return s, doc.Header, nil
}

// ExportFile writes a snapshot to path, creating parent directories.
func ExportFile(path string, s state.State) (Header, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return Header{}, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return Header{}, err
	}
	h, err := ExportSnapshot(f, s)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return h, err
}

// ImportFile reads a snapshot from path.
func ImportFile(path string) (state.State, Header, error) {
	f, err := os.Open(path)
	if err != nil {
		return state.State{}, Header{}, err
	}
	defer f.Close()
	return ImportSnapshot(f)
}
