// Package snapshot encodes engine snapshots as zstd-compressed JSON and
// stores them as files.
package snapshot

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"

	"timeherosim/internal/app/sim"
)

const Version = 1

var ErrVersion = errors.New("unsupported snapshot version")

// Header is the first line of every encoded snapshot so tools can inspect
// a file without decoding the body.
type Header struct {
	Version int    `json:"version"`
	RunID   string `json:"run_id"`
	Tick    int64  `json:"tick"`
	Day     int    `json:"day"`
}

type Codec struct {
	Level zstd.EncoderLevel
}

func (c Codec) level() zstd.EncoderLevel {
	if c.Level == 0 {
		return zstd.SpeedDefault
	}
	return c.Level
}

func (c Codec) Encode(snap sim.Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	if err := c.Write(&buf, snap); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (c Codec) Decode(payload []byte) (sim.Snapshot, error) {
	_, snap, err := c.Read(bytes.NewReader(payload))
	return snap, err
}

func (c Codec) Write(w io.Writer, snap sim.Snapshot) error {
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(c.level()))
	if err != nil {
		return err
	}
	bw := bufio.NewWriterSize(enc, 64*1024)

	h := Header{Version: Version, RunID: snap.RunID, Tick: snap.Tick}
	if snap.State != nil {
		h.Day = snap.State.Time.Day
	}
	hb, _ := json.Marshal(h)
	if _, err := bw.Write(hb); err != nil {
		enc.Close()
		return err
	}
	if err := bw.WriteByte('\n'); err != nil {
		enc.Close()
		return err
	}
	if err := json.NewEncoder(bw).Encode(&snap); err != nil {
		enc.Close()
		return fmt.Errorf("json encode: %w", err)
	}
	if err := bw.Flush(); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}

func (c Codec) Read(r io.Reader) (Header, sim.Snapshot, error) {
	var snap sim.Snapshot
	dec, err := zstd.NewReader(r)
	if err != nil {
		return Header{}, snap, err
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, 64*1024)
	h, err := readHeader(br)
	if err != nil {
		return h, snap, err
	}
	if err := json.NewDecoder(br).Decode(&snap); err != nil {
		return h, snap, fmt.Errorf("json decode: %w", err)
	}
	return h, snap, nil
}

// ReadHeader decodes only the first line of an encoded snapshot.
func ReadHeader(payload []byte) (Header, error) {
	dec, err := zstd.NewReader(bytes.NewReader(payload))
	if err != nil {
		return Header{}, err
	}
	defer dec.Close()
	return readHeader(bufio.NewReader(dec))
}

func readHeader(br *bufio.Reader) (Header, error) {
	var h Header
	line, err := br.ReadBytes('\n')
	if err != nil {
		return h, fmt.Errorf("read header: %w", err)
	}
	if err := json.Unmarshal(line, &h); err != nil {
		return h, fmt.Errorf("parse header: %w", err)
	}
	if h.Version != Version {
		return h, fmt.Errorf("%w: %d", ErrVersion, h.Version)
	}
	return h, nil
}
