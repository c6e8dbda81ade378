package ipc

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"
)

// rawFrame encodes a payload with length prefix without going through
// the encoder under test.
func rawFrame(payload []byte) []byte {
	buf := make([]byte, LengthPrefixSize+len(payload))
	binary.BigEndian.PutUint32(buf[:LengthPrefixSize], uint32(len(payload)))
	copy(buf[LengthPrefixSize:], payload)
	return buf
}

func TestFrameDecoder_SingleFrame(t *testing.T) {
	payload := []byte("hello bridge")
	decoder := NewFrameDecoder(bytes.NewReader(rawFrame(payload)))

	got, err := decoder.ReadFrame()
	if err != nil {
		t.Fatalf("ReadFrame failed: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("payload = %q, want %q", got, payload)
	}

	if _, err := decoder.ReadFrame(); err != io.EOF {
		t.Errorf("second ReadFrame error = %v, want io.EOF", err)
	}
}

func TestFrameDecoder_MultipleFrames(t *testing.T) {
	var buf bytes.Buffer
	payloads := [][]byte{[]byte("one"), []byte("two"), []byte("three")}
	for _, p := range payloads {
		buf.Write(rawFrame(p))
	}

	decoder := NewFrameDecoder(&buf)
	for i, want := range payloads {
		got, err := decoder.ReadFrame()
		if err != nil {
			t.Fatalf("ReadFrame %d failed: %v", i, err)
		}
		if !bytes.Equal(got, want) {
			t.Errorf("frame %d = %q, want %q", i, got, want)
		}
	}
	if _, err := decoder.ReadFrame(); err != io.EOF {
		t.Errorf("trailing ReadFrame error = %v, want io.EOF", err)
	}
}

func TestFrameDecoder_EmptyStream(t *testing.T) {
	decoder := NewFrameDecoder(bytes.NewReader(nil))
	if _, err := decoder.ReadFrame(); err != io.EOF {
		t.Errorf("ReadFrame error = %v, want io.EOF", err)
	}
}

func TestFrameDecoder_PartialPrefix(t *testing.T) {
	decoder := NewFrameDecoder(bytes.NewReader([]byte{0x00, 0x00}))

	_, err := decoder.ReadFrame()
	var frameErr *FrameError
	if !errors.As(err, &frameErr) {
		t.Fatalf("error = %v, want *FrameError", err)
	}
	if frameErr.Kind != FrameErrorPartial {
		t.Errorf("Kind = %v, want FrameErrorPartial", frameErr.Kind)
	}
	if !frameErr.IsFatal() {
		t.Error("partial prefix should be fatal")
	}
}

func TestFrameDecoder_PartialPayload(t *testing.T) {
	frame := rawFrame([]byte("full payload"))
	truncated := frame[:len(frame)-4]

	decoder := NewFrameDecoder(bytes.NewReader(truncated))
	_, err := decoder.ReadFrame()

	var frameErr *FrameError
	if !errors.As(err, &frameErr) {
		t.Fatalf("error = %v, want *FrameError", err)
	}
	if frameErr.Kind != FrameErrorPartial {
		t.Errorf("Kind = %v, want FrameErrorPartial", frameErr.Kind)
	}
}

func TestFrameDecoder_TooLarge(t *testing.T) {
	var prefix [LengthPrefixSize]byte
	binary.BigEndian.PutUint32(prefix[:], MaxPayloadSize+1)

	decoder := NewFrameDecoder(bytes.NewReader(prefix[:]))
	_, err := decoder.ReadFrame()

	var frameErr *FrameError
	if !errors.As(err, &frameErr) {
		t.Fatalf("error = %v, want *FrameError", err)
	}
	if frameErr.Kind != FrameErrorTooLarge {
		t.Errorf("Kind = %v, want FrameErrorTooLarge", frameErr.Kind)
	}
	if !IsFatalFrameError(err) {
		t.Error("oversized frame should be fatal")
	}
}

func TestFrameEncoder_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	encoder := NewFrameEncoder(&buf)

	payloads := [][]byte{[]byte("alpha"), {}, []byte("gamma")}
	for i, p := range payloads {
		if err := encoder.WriteFrame(p); err != nil {
			t.Fatalf("WriteFrame %d failed: %v", i, err)
		}
	}

	decoder := NewFrameDecoder(&buf)
	for i, want := range payloads {
		got, err := decoder.ReadFrame()
		if err != nil {
			t.Fatalf("ReadFrame %d failed: %v", i, err)
		}
		if !bytes.Equal(got, want) {
			t.Errorf("frame %d = %q, want %q", i, got, want)
		}
	}
}

func TestFrameEncoder_RejectsOversized(t *testing.T) {
	encoder := NewFrameEncoder(io.Discard)
	err := encoder.WriteFrame(make([]byte, MaxPayloadSize+1))

	var frameErr *FrameError
	if !errors.As(err, &frameErr) {
		t.Fatalf("error = %v, want *FrameError", err)
	}
	if frameErr.Kind != FrameErrorTooLarge {
		t.Errorf("Kind = %v, want FrameErrorTooLarge", frameErr.Kind)
	}
}

func TestIsFatalFrameError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"partial", &FrameError{Kind: FrameErrorPartial, Msg: "x"}, true},
		{"too large", &FrameError{Kind: FrameErrorTooLarge, Msg: "x"}, true},
		{"decode", &FrameError{Kind: FrameErrorDecode, Msg: "x"}, false},
		{"other error", errors.New("boom"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsFatalFrameError(tt.err); got != tt.want {
				t.Errorf("IsFatalFrameError() = %v, want %v", got, tt.want)
			}
		})
	}
}
