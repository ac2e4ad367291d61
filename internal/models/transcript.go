package models

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// TranscriptLine is one attributed utterance of a generated script
type TranscriptLine struct {
	ID        int    `json:"id"`
	SpeakerID string `json:"speaker_id"`
	Text      string `json:"text"`
}

// Transcript is the ordered script returned by the transcript stage
type Transcript []TranscriptLine

// Clone returns an independent copy of the transcript
func (t Transcript) Clone() Transcript {
	if t == nil {
		return nil
	}
	out := make(Transcript, len(t))
	copy(out, t)
	return out
}

// Speakers returns the distinct speaker IDs in order of first appearance
func (t Transcript) Speakers() []string {
	return lo.Uniq(lo.Map(t, func(line TranscriptLine, _ int) string {
		return line.SpeakerID
	}))
}

// VoiceMap maps a speaker ID to a synthesis voice name
type VoiceMap map[string]string

// DefaultVoiceMap returns the static two-speaker voice mapping
func DefaultVoiceMap() VoiceMap {
	return VoiceMap{
		"1": VoiceSpeaker1,
		"2": VoiceSpeaker2,
	}
}

// TranscriptForm is the editable representation of the transcript
// configuration. List-valued fields are held as comma-delimited text.
type TranscriptForm struct {
	WordCount            int     `json:"word_count"`
	ConversationStyle    string  `json:"conversation_style"`
	RolesPerson1         string  `json:"roles_person1"`
	RolesPerson2         string  `json:"roles_person2"`
	DialogueStructure    string  `json:"dialogue_structure"`
	PodcastName          string  `json:"podcast_name"`
	PodcastTagline       string  `json:"podcast_tagline"`
	OutputLanguage       string  `json:"output_language"`
	UserInstructions     string  `json:"user_instructions"`
	EngagementTechniques string  `json:"engagement_techniques"`
	Creativity           float64 `json:"creativity"`
	MaxNumChunks         int     `json:"max_num_chunks"`
	MinChunkSize         int     `json:"min_chunk_size"`
}

// TranscriptConfig is the wire form of the configuration sent to the backend
type TranscriptConfig struct {
	WordCount            int      `json:"word_count"`
	ConversationStyle    []string `json:"conversation_style"`
	RolesPerson1         string   `json:"roles_person1"`
	RolesPerson2         string   `json:"roles_person2"`
	DialogueStructure    []string `json:"dialogue_structure"`
	PodcastName          string   `json:"podcast_name"`
	PodcastTagline       string   `json:"podcast_tagline"`
	OutputLanguage       string   `json:"output_language"`
	UserInstructions     string   `json:"user_instructions"`
	EngagementTechniques []string `json:"engagement_techniques"`
	Creativity           float64  `json:"creativity"`
	MaxNumChunks         int      `json:"max_num_chunks"`
	MinChunkSize         int      `json:"min_chunk_size"`
}

// DefaultTranscriptForm returns the panel's default configuration
func DefaultTranscriptForm() TranscriptForm {
	return TranscriptForm{
		WordCount:            100,
		ConversationStyle:    "Vui vẻ,Giàu hình ảnh,Dễ hiểu",
		RolesPerson1:         "Giáo viên thân thiện",
		RolesPerson2:         "Học sinh tò mò",
		DialogueStructure:    "Chào hỏi,Giới thiệu chủ đề,Giải thích khái niệm,Câu hỏi tương tác,Kết thúc bằng bài hát hoặc trò chơi",
		PodcastName:          "Học cùng Sao Khuê",
		PodcastTagline:       "Khơi dậy tri thức – Nuôi dưỡng tò mò!",
		OutputLanguage:       "Vietnamese",
		UserInstructions:     "Sử dụng từ đơn giản, kể chuyện sinh động, gần gũi với lứa tuổi học sinh tiểu học.",
		EngagementTechniques: "Âm thanh vui nhộn,Câu hỏi tương tác,So sánh hài hước,Câu chuyện ngắn",
		Creativity:           0.3,
		MaxNumChunks:         5,
		MinChunkSize:         400,
	}
}

// SplitDelimited splits comma-delimited text into trimmed, non-empty
// entries, preserving order.
func SplitDelimited(s string) []string {
	parts := lo.Map(strings.Split(s, ","), func(part string, _ int) string {
		return strings.TrimSpace(part)
	})
	return lo.Filter(parts, func(part string, _ int) bool {
		return part != ""
	})
}

// Validate checks the scalar fields of the form
func (f TranscriptForm) Validate() error {
	if f.WordCount <= 0 {
		return fmt.Errorf("word_count must be positive, got %d", f.WordCount)
	}
	if f.Creativity < 0 || f.Creativity > 1 {
		return fmt.Errorf("creativity must be within [0,1], got %g", f.Creativity)
	}
	if f.MaxNumChunks <= 0 {
		return fmt.Errorf("max_num_chunks must be positive, got %d", f.MaxNumChunks)
	}
	if f.MinChunkSize <= 0 {
		return fmt.Errorf("min_chunk_size must be positive, got %d", f.MinChunkSize)
	}
	return nil
}

// Prepare converts the form into the wire configuration
func (f TranscriptForm) Prepare() TranscriptConfig {
	return TranscriptConfig{
		WordCount:            f.WordCount,
		ConversationStyle:    SplitDelimited(f.ConversationStyle),
		RolesPerson1:         strings.TrimSpace(f.RolesPerson1),
		RolesPerson2:         strings.TrimSpace(f.RolesPerson2),
		DialogueStructure:    SplitDelimited(f.DialogueStructure),
		PodcastName:          strings.TrimSpace(f.PodcastName),
		PodcastTagline:       strings.TrimSpace(f.PodcastTagline),
		OutputLanguage:       strings.TrimSpace(f.OutputLanguage),
		UserInstructions:     strings.TrimSpace(f.UserInstructions),
		EngagementTechniques: SplitDelimited(f.EngagementTechniques),
		Creativity:           f.Creativity,
		MaxNumChunks:         f.MaxNumChunks,
		MinChunkSize:         f.MinChunkSize,
	}
}

// PipelineResult is the terminal artifact of a pipeline run
type PipelineResult struct {
	AudioURL string `json:"audio_url"`
}
