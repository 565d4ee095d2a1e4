package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"bookbinder/internal/adts"
)

// ADTSFrame builds one well-formed ADTS frame (7-byte header, no CRC) with
// payloadLen payload bytes filled with a repeating pattern.
func ADTSFrame(t testing.TB, cfg adts.Config, payloadLen int) []byte {
	t.Helper()

	if payloadLen < 0 {
		t.Fatalf("negative payload length %d", payloadLen)
	}
	frameLen := adts.HeaderSize + payloadLen
	if frameLen > adts.MaxFrameLength {
		t.Fatalf("frame length %d exceeds 13-bit field", frameLen)
	}

	frame := make([]byte, frameLen)
	frame[0] = 0xFF
	frame[1] = 0xF1 // MPEG-4, layer 0, protection absent
	frame[2] = 0x40 | cfg.SampleRateIndex<<2 | cfg.ChannelConfig>>2&0x01
	frame[3] = (cfg.ChannelConfig&0x03)<<6 | byte(frameLen>>11&0x03)
	frame[4] = byte(frameLen >> 3)
	frame[5] = byte(frameLen&0x07)<<5 | 0x1F
	frame[6] = 0xFC
	for i := adts.HeaderSize; i < frameLen; i++ {
		frame[i] = byte(0xA0 + i%16)
	}
	return frame
}

// ADTSStream concatenates frameCount identical frames into one buffer.
func ADTSStream(t testing.TB, cfg adts.Config, frameCount, payloadLen int) []byte {
	t.Helper()

	var stream []byte
	for i := 0; i < frameCount; i++ {
		stream = append(stream, ADTSFrame(t, cfg, payloadLen)...)
	}
	return stream
}

// StereoConfig returns the configuration used by most fixtures: 44.1 kHz,
// two channels.
func StereoConfig() adts.Config {
	return adts.Config{SampleRateIndex: 4, ChannelConfig: 2}
}

// WritePart writes data as a part file under dir and returns its path.
func WritePart(t testing.TB, dir, name string, data []byte) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}
