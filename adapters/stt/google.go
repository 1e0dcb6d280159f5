package stt

import (
	"context"
	"fmt"
	"io"
	"sync"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
	"go.uber.org/zap"

	"github.com/trutalk/voice-server/domain/repositories"
	"github.com/trutalk/voice-server/internal/language"
)

// defaultAlternativeLanguages is the candidate set offered to the provider
// when the caller asks for auto-detection. Detection is constrained to
// this list rather than left open.
var defaultAlternativeLanguages = []string{
	"es-ES", "fr-FR", "de-DE", "it-IT", "pt-BR",
	"ru-RU", "ja-JP", "ko-KR", "zh-CN", "ar-SA",
	"hi-IN", "tr-TR", "nl-NL", "pl-PL", "sv-SE",
}

// GoogleSpeechToText implements SpeechToText using Google Cloud Speech
type GoogleSpeechToText struct {
	client               *speech.Client
	alternativeLanguages []string
	logger               *zap.Logger
}

var _ repositories.SpeechToText = (*GoogleSpeechToText)(nil)

// NewGoogleSpeechToText creates the adapter with a single shared client.
// alternativeLanguages overrides the auto-detect candidate list; nil keeps
// the default set.
func NewGoogleSpeechToText(ctx context.Context, alternativeLanguages []string, logger *zap.Logger) (*GoogleSpeechToText, error) {
	client, err := speech.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create speech client: %w", err)
	}

	if alternativeLanguages == nil {
		alternativeLanguages = defaultAlternativeLanguages
	}

	return &GoogleSpeechToText{
		client:               client,
		alternativeLanguages: alternativeLanguages,
		logger:               logger,
	}, nil
}

// Close releases the underlying client connection.
func (g *GoogleSpeechToText) Close() error {
	return g.client.Close()
}

// Transcribe converts one utterance into text with word-level timing,
// confidence and the recognized language.
func (g *GoogleSpeechToText) Transcribe(ctx context.Context, audioData []byte, config repositories.AudioConfig) (*repositories.TranscriptionResult, error) {
	recognitionConfig, err := g.buildRecognitionConfig(config)
	if err != nil {
		return nil, err
	}

	resp, err := g.client.Recognize(ctx, &speechpb.RecognizeRequest{
		Config: recognitionConfig,
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: audioData},
		},
	})
	if err != nil {
		g.logger.Error("Speech recognition request failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", repositories.ErrTranscriptionFailed, err)
	}

	if len(resp.Results) == 0 {
		return nil, repositories.ErrEmptyTranscription
	}

	result := resp.Results[0]
	if len(result.Alternatives) == 0 {
		return nil, repositories.ErrEmptyTranscription
	}

	alternative := result.Alternatives[0]
	words := make([]repositories.WordTiming, 0, len(alternative.Words))
	for _, wordInfo := range alternative.Words {
		words = append(words, repositories.WordTiming{
			Word:      wordInfo.Word,
			StartTime: wordInfo.StartTime.AsDuration().Seconds(),
			EndTime:   wordInfo.EndTime.AsDuration().Seconds(),
		})
	}

	detected := language.FromLocale(result.LanguageCode)
	if detected == "" {
		detected = "en"
	}

	return &repositories.TranscriptionResult{
		Text:       alternative.Transcript,
		Language:   detected,
		Confidence: float64(alternative.Confidence),
		Words:      words,
	}, nil
}

// buildRecognitionConfig translates AudioConfig into the provider request.
// Word timings and automatic punctuation are always on.
func (g *GoogleSpeechToText) buildRecognitionConfig(config repositories.AudioConfig) (*speechpb.RecognitionConfig, error) {
	encoding, err := getAudioEncoding(config.Encoding)
	if err != nil {
		return nil, err
	}

	recognitionConfig := &speechpb.RecognitionConfig{
		Encoding:                   encoding,
		SampleRateHertz:            int32(config.SampleRate),
		EnableWordTimeOffsets:      true,
		EnableAutomaticPunctuation: true,
		Model:                      "latest_long",
	}

	if config.Language == "" || config.Language == "auto" {
		recognitionConfig.LanguageCode = "en-US"
		recognitionConfig.AlternativeLanguageCodes = g.alternativeLanguages
	} else {
		recognitionConfig.LanguageCode = language.ToLocale(config.Language)
	}

	return recognitionConfig, nil
}

// InitTranscribeStreaming opens a streaming transcription session. The
// returned stream delivers interim and final transcripts until the caller
// closes it or the provider stream fails; there is no reconnect.
func (g *GoogleSpeechToText) InitTranscribeStreaming(ctx context.Context, config repositories.AudioConfig) (repositories.SpeechToTextStreaming, error) {
	stream, err := g.client.StreamingRecognize(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create streaming recognize: %w", err)
	}

	recognitionConfig, err := g.buildRecognitionConfig(config)
	if err != nil {
		stream.CloseSend()
		return nil, err
	}

	if err := stream.Send(&speechpb.StreamingRecognizeRequest{
		StreamingRequest: &speechpb.StreamingRecognizeRequest_StreamingConfig{
			StreamingConfig: &speechpb.StreamingRecognitionConfig{
				Config:         recognitionConfig,
				InterimResults: true,
			},
		},
	}); err != nil {
		stream.CloseSend()
		return nil, fmt.Errorf("failed to send streaming config: %w", err)
	}

	streamInstance := &GoogleSpeechToTextStream{
		stream:      stream,
		transcripts: make(chan string, 16),
		logger:      g.logger,
	}
	go streamInstance.receiveResults()

	return streamInstance, nil
}

// GoogleSpeechToTextStream is one open streaming recognition session.
type GoogleSpeechToTextStream struct {
	stream      speechpb.Speech_StreamingRecognizeClient
	transcripts chan string
	logger      *zap.Logger
	closeOnce   sync.Once
	closeErr    error
}

var _ repositories.SpeechToTextStreaming = (*GoogleSpeechToTextStream)(nil)

// Stream sends one chunk of audio to the provider.
func (s *GoogleSpeechToTextStream) Stream(data []byte) error {
	if len(data) == 0 {
		return nil
	}

	if err := s.stream.Send(&speechpb.StreamingRecognizeRequest{
		StreamingRequest: &speechpb.StreamingRecognizeRequest_AudioContent{
			AudioContent: data,
		},
	}); err != nil {
		return fmt.Errorf("failed to send audio data: %w", err)
	}

	return nil
}

// Transcripts returns the channel of interim and final transcript strings.
// The channel closes when the stream ends or fails.
func (s *GoogleSpeechToTextStream) Transcripts() <-chan string {
	return s.transcripts
}

// Close signals end of audio to the provider. The receiver drains any
// remaining results before the transcript channel closes.
func (s *GoogleSpeechToTextStream) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.stream.CloseSend()
	})
	return s.closeErr
}

func (s *GoogleSpeechToTextStream) receiveResults() {
	defer close(s.transcripts)

	for {
		resp, err := s.stream.Recv()
		if err == io.EOF {
			return
		}
		if err != nil {
			// Fatal for this stream; the caller observes the closed
			// transcript channel and does not reconnect.
			s.logger.Error("Streaming recognition failed", zap.Error(err))
			return
		}

		for _, result := range resp.Results {
			if len(result.Alternatives) == 0 {
				continue
			}
			s.transcripts <- result.Alternatives[0].Transcript
		}
	}
}

// getAudioEncoding converts string encoding to Google Speech API enum
func getAudioEncoding(encoding string) (speechpb.RecognitionConfig_AudioEncoding, error) {
	switch encoding {
	case "WAV", "LINEAR16":
		return speechpb.RecognitionConfig_LINEAR16, nil
	case "MP3":
		return speechpb.RecognitionConfig_MP3, nil
	case "FLAC":
		return speechpb.RecognitionConfig_FLAC, nil
	case "MULAW":
		return speechpb.RecognitionConfig_MULAW, nil
	case "AMR":
		return speechpb.RecognitionConfig_AMR, nil
	case "AMR_WB":
		return speechpb.RecognitionConfig_AMR_WB, nil
	case "OGG_OPUS":
		return speechpb.RecognitionConfig_OGG_OPUS, nil
	case "SPEEX_WITH_HEADER_BYTE":
		return speechpb.RecognitionConfig_SPEEX_WITH_HEADER_BYTE, nil
	case "WEBM_OPUS":
		return speechpb.RecognitionConfig_WEBM_OPUS, nil
	default:
		return speechpb.RecognitionConfig_ENCODING_UNSPECIFIED, fmt.Errorf("unsupported encoding: %s", encoding)
	}
}
