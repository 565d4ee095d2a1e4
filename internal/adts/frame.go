package adts

import "fmt"

const (
	// HeaderSize is the fixed ADTS header length without the optional CRC.
	HeaderSize = 7
	// crcSize is the extra bytes present when protection_absent is 0.
	crcSize = 2
	// SamplesPerFrame is the AAC access unit size: every ADTS frame carries
	// 1024 PCM samples per channel regardless of bitrate.
	SamplesPerFrame = 1024
	// MaxFrameLength is the ceiling of the 13-bit aac_frame_length field.
	MaxFrameLength = 1<<13 - 1
)

// sampleRates maps the ADTS sampling_frequency_index to Hz (ISO 14496-3).
var sampleRates = [...]int{
	96000, 88200, 64000, 48000, 44100, 32000, 24000, 22050,
	16000, 12000, 11025, 8000, 7350,
}

// Frame describes one validated ADTS access unit located inside its source
// buffer. It references the buffer by position only and owns no bytes.
type Frame struct {
	Offset          int
	Length          int
	SampleRateIndex uint8
	ChannelConfig   uint8
	HasCRC          bool
}

// SampleRate returns the frame's sampling rate in Hz.
func (f Frame) SampleRate() int {
	return sampleRates[f.SampleRateIndex]
}

// SampleCount returns the number of PCM samples per channel the frame decodes
// to. Fixed for AAC.
func (f Frame) SampleCount() int {
	return SamplesPerFrame
}

// Config returns the frame's audio configuration tuple.
func (f Frame) Config() Config {
	return Config{SampleRateIndex: f.SampleRateIndex, ChannelConfig: f.ChannelConfig}
}

// Config is the (sample rate, channel layout) pair that must be uniform
// across a directly-concatenated stream.
type Config struct {
	SampleRateIndex uint8
	ChannelConfig   uint8
}

// SampleRate returns the configuration's sampling rate in Hz.
func (c Config) SampleRate() int {
	return sampleRates[c.SampleRateIndex]
}

func (c Config) String() string {
	return fmt.Sprintf("%dHz/%dch", c.SampleRate(), c.ChannelConfig)
}

// headerAt decodes the ADTS header at offset. It reports false when the sync
// word is absent, the header is malformed, or the declared frame length is
// outside [minLength, maxLength] or overruns the buffer.
func headerAt(buf []byte, offset, minLength, maxLength int) (Frame, bool) {
	if offset+HeaderSize > len(buf) {
		return Frame{}, false
	}
	// Syncword 0xFFF, MPEG layer bits must be zero.
	if buf[offset] != 0xFF || buf[offset+1]&0xF0 != 0xF0 || buf[offset+1]&0x06 != 0 {
		return Frame{}, false
	}

	sampleRateIndex := buf[offset+2] >> 2 & 0x0F
	if int(sampleRateIndex) >= len(sampleRates) {
		return Frame{}, false
	}

	frame := Frame{
		Offset:          offset,
		SampleRateIndex: sampleRateIndex,
		ChannelConfig:   (buf[offset+2]&0x01)<<2 | buf[offset+3]>>6&0x03,
		HasCRC:          buf[offset+1]&0x01 == 0,
	}
	frame.Length = int(buf[offset+3]&0x03)<<11 | int(buf[offset+4])<<3 | int(buf[offset+5])>>5

	headerLength := HeaderSize
	if frame.HasCRC {
		headerLength += crcSize
	}
	if frame.Length < headerLength || frame.Length < minLength || frame.Length > maxLength {
		return Frame{}, false
	}
	if offset+frame.Length > len(buf) {
		return Frame{}, false
	}
	return frame, true
}
