package transcribe

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/tycoonteritory/AutoCut/internal/model"
)

var _ Provider = (*HTTPProvider)(nil)

// HTTPProvider talks to a whisper.cpp HTTP server's /inference endpoint, for
// deployments that run transcription as a separate process rather than
// linking whisper.cpp natively. A model refusal or missing model
// surfaces here as a connection failure.
type HTTPProvider struct {
	ServerURL  string
	httpClient *http.Client
}

// NewHTTP creates an HTTPProvider pointed at a running whisper-server.
func NewHTTP(serverURL string) *HTTPProvider {
	return &HTTPProvider{
		ServerURL:  serverURL,
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
}

type inferenceResponse struct {
	Text     string `json:"text"`
	Segments []struct {
		Start float64 `json:"t0"`
		End   float64 `json:"t1"`
		Text  string  `json:"text"`
		Words []struct {
			Word  string  `json:"word"`
			Start float64 `json:"t0"`
			End   float64 `json:"t1"`
			Prob  float64 `json:"probability"`
		} `json:"tokens"`
	} `json:"segments"`
}

// Transcribe posts 16-bit PCM audio (converted from samples) to the server
// as multipart/form-data and parses its segment list.
func (p *HTTPProvider) Transcribe(ctx context.Context, samples []float32, sampleRateHz int, opts Options) ([]model.TranscriptSegment, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	fw, err := w.CreateFormFile("file", "audio.wav")
	if err != nil {
		return nil, err
	}
	if err := writeWAV(fw, samples, sampleRateHz); err != nil {
		return nil, err
	}
	_ = w.WriteField("response_format", "verbose_json")
	if opts.Language != "" {
		_ = w.WriteField("language", opts.Language)
	}
	if opts.ModelSize != "" {
		_ = w.WriteField("model", opts.ModelSize)
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.ServerURL+"/inference", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: server returned %d", ErrUnavailable, resp.StatusCode)
	}

	var parsed inferenceResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: malformed response: %v", ErrUnavailable, err)
	}

	segments := make([]model.TranscriptSegment, 0, len(parsed.Segments))
	for _, s := range parsed.Segments {
		seg := model.TranscriptSegment{Start: s.Start, End: s.End, Text: s.Text}
		for _, wd := range s.Words {
			seg.Words = append(seg.Words, model.Word{
				Text:       wd.Word,
				Start:      wd.Start,
				End:        wd.End,
				Confidence: wd.Prob,
			})
		}
		segments = append(segments, seg)
	}
	return segments, nil
}

// Close is a no-op: the HTTP provider holds no local resources.
func (p *HTTPProvider) Close() error { return nil }

// writeWAV writes a minimal 16-bit mono PCM WAV container.
func writeWAV(w interface{ Write([]byte) (int, error) }, samples []float32, sampleRateHz int) error {
	data := make([]byte, len(samples)*2)
	for i, s := range samples {
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		binary.LittleEndian.PutUint16(data[i*2:], uint16(int16(s*32767)))
	}

	var hdr bytes.Buffer
	byteRate := sampleRateHz * 2
	hdr.WriteString("RIFF")
	binary.Write(&hdr, binary.LittleEndian, uint32(36+len(data)))
	hdr.WriteString("WAVE")
	hdr.WriteString("fmt ")
	binary.Write(&hdr, binary.LittleEndian, uint32(16))
	binary.Write(&hdr, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&hdr, binary.LittleEndian, uint16(1)) // mono
	binary.Write(&hdr, binary.LittleEndian, uint32(sampleRateHz))
	binary.Write(&hdr, binary.LittleEndian, uint32(byteRate))
	binary.Write(&hdr, binary.LittleEndian, uint16(2)) // block align
	binary.Write(&hdr, binary.LittleEndian, uint16(16))
	hdr.WriteString("data")
	binary.Write(&hdr, binary.LittleEndian, uint32(len(data)))

	if _, err := w.Write(hdr.Bytes()); err != nil {
		return err
	}
	_, err := w.Write(data)
	return err
}
