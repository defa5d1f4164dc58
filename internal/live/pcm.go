package live

import (
	"encoding/base64"
	"encoding/binary"
	"time"
)

const (
	// InputSampleRate is the sample rate of audio streamed to the model.
	InputSampleRate = 16000

	// OutputSampleRate is the sample rate of audio the model speaks back.
	OutputSampleRate = 24000

	// InputMIMEType describes outbound audio frames.
	InputMIMEType = "audio/pcm;rate=16000"
)

// FloatToPCM16 converts normalized float samples to little-endian 16-bit
// linear PCM bytes.
func FloatToPCM16(samples []float32) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(int16(s*32768)))
	}
	return out
}

// PCM16ToFloat converts little-endian 16-bit linear PCM bytes to
// normalized float samples. A trailing odd byte is ignored.
func PCM16ToFloat(data []byte) []float32 {
	n := len(data) / 2
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		sample := int16(binary.LittleEndian.Uint16(data[i*2:]))
		out[i] = float32(sample) / 32768.0
	}
	return out
}

// EncodeFrame base64-encodes a raw PCM frame for transport.
func EncodeFrame(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// DecodeFrame decodes a base64 PCM frame.
func DecodeFrame(frame string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(frame)
}

// PCMDuration returns how long a raw mono PCM16 frame plays at the given
// sample rate.
func PCMDuration(byteLen, sampleRate int) time.Duration {
	samples := byteLen / 2
	return time.Duration(samples) * time.Second / time.Duration(sampleRate)
}
