package models

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
)

func TestSplitDelimited(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"simple", "a,b,c", []string{"a", "b", "c"}},
		{"surrounding whitespace", "  Vui vẻ , Giàu hình ảnh ,Dễ hiểu  ", []string{"Vui vẻ", "Giàu hình ảnh", "Dễ hiểu"}},
		{"single value", "Chào hỏi", []string{"Chào hỏi"}},
		{"empty entries dropped", "a,, ,b,", []string{"a", "b"}},
		{"tabs and newlines", "\ta\n,\nb\t", []string{"a", "b"}},
		{"empty string", "", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitDelimited(tt.input)
			if len(got) != len(tt.want) {
				t.Fatalf("SplitDelimited(%q) = %v, want %v", tt.input, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("SplitDelimited(%q)[%d] = %q, want %q", tt.input, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestTranscriptForm_PrepareHasNoSurroundingWhitespace(t *testing.T) {
	forms := []TranscriptForm{
		DefaultTranscriptForm(),
		{
			WordCount:            50,
			ConversationStyle:    " fun ,  vivid,easy ",
			DialogueStructure:    "intro ,body,  outro",
			EngagementTechniques: "  jokes , quiz ",
			RolesPerson1:         "  host ",
			Creativity:           1,
			MaxNumChunks:         1,
			MinChunkSize:         1,
		},
	}

	for _, form := range forms {
		cfg := form.Prepare()
		for _, list := range [][]string{cfg.ConversationStyle, cfg.DialogueStructure, cfg.EngagementTechniques} {
			for _, item := range list {
				if item != strings.TrimSpace(item) {
					t.Errorf("item %q has surrounding whitespace", item)
				}
				if item == "" {
					t.Error("prepared list contains an empty item")
				}
			}
		}
		if cfg.RolesPerson1 != strings.TrimSpace(cfg.RolesPerson1) {
			t.Errorf("RolesPerson1 %q not trimmed", cfg.RolesPerson1)
		}
	}
}

func TestDefaultTranscriptForm_Prepare(t *testing.T) {
	cfg := DefaultTranscriptForm().Prepare()

	wantStyle := []string{"Vui vẻ", "Giàu hình ảnh", "Dễ hiểu"}
	if !reflect.DeepEqual(cfg.ConversationStyle, wantStyle) {
		t.Errorf("ConversationStyle = %v, want %v", cfg.ConversationStyle, wantStyle)
	}
	if len(cfg.DialogueStructure) != 5 {
		t.Errorf("DialogueStructure has %d entries, want 5", len(cfg.DialogueStructure))
	}
	if len(cfg.EngagementTechniques) != 4 {
		t.Errorf("EngagementTechniques has %d entries, want 4", len(cfg.EngagementTechniques))
	}
	if cfg.WordCount != 100 || cfg.Creativity != 0.3 || cfg.MaxNumChunks != 5 || cfg.MinChunkSize != 400 {
		t.Errorf("scalar defaults changed: %+v", cfg)
	}
}

func TestTranscriptConfig_JSONShape(t *testing.T) {
	data, err := json.Marshal(DefaultTranscriptForm().Prepare())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"conversation_style", "dialogue_structure", "engagement_techniques"} {
		if _, ok := raw[key].([]any); !ok {
			t.Errorf("%s should be a JSON array, got %T", key, raw[key])
		}
	}
	if _, ok := raw["word_count"].(float64); !ok {
		t.Errorf("word_count should be a number, got %T", raw["word_count"])
	}
}

func TestTranscriptForm_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*TranscriptForm)
		wantErr bool
	}{
		{"defaults", func(f *TranscriptForm) {}, false},
		{"creativity zero", func(f *TranscriptForm) { f.Creativity = 0 }, false},
		{"creativity one", func(f *TranscriptForm) { f.Creativity = 1 }, false},
		{"creativity too high", func(f *TranscriptForm) { f.Creativity = 1.5 }, true},
		{"creativity negative", func(f *TranscriptForm) { f.Creativity = -0.1 }, true},
		{"zero word count", func(f *TranscriptForm) { f.WordCount = 0 }, true},
		{"zero chunks", func(f *TranscriptForm) { f.MaxNumChunks = 0 }, true},
		{"zero chunk size", func(f *TranscriptForm) { f.MinChunkSize = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := DefaultTranscriptForm()
			tt.mutate(&form)
			err := form.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestTranscriptLine_JSON(t *testing.T) {
	var transcript Transcript
	body := `[{"id":1,"speaker_id":"1","text":"hi"},{"id":2,"speaker_id":"2","text":"hello"}]`
	if err := json.Unmarshal([]byte(body), &transcript); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	want := Transcript{
		{ID: 1, SpeakerID: "1", Text: "hi"},
		{ID: 2, SpeakerID: "2", Text: "hello"},
	}
	if !reflect.DeepEqual(transcript, want) {
		t.Errorf("transcript = %+v, want %+v", transcript, want)
	}
}

func TestTranscript_CloneAndSpeakers(t *testing.T) {
	original := Transcript{
		{ID: 1, SpeakerID: "1", Text: "a"},
		{ID: 2, SpeakerID: "2", Text: "b"},
		{ID: 3, SpeakerID: "1", Text: "c"},
	}

	clone := original.Clone()
	clone[0].Text = "changed"
	if original[0].Text != "a" {
		t.Error("Clone should not share the backing array")
	}

	if got := original.Speakers(); !reflect.DeepEqual(got, []string{"1", "2"}) {
		t.Errorf("Speakers() = %v, want [1 2]", got)
	}

	var empty Transcript
	if empty.Clone() != nil {
		t.Error("Clone of nil transcript should be nil")
	}
}

func TestDefaultVoiceMap(t *testing.T) {
	voices := DefaultVoiceMap()
	if len(voices) != 2 {
		t.Fatalf("expected 2 voices, got %d", len(voices))
	}
	if voices["1"] != "vi-VN-HoaiMyNeural" || voices["2"] != "vi-VN-NamMinhNeural" {
		t.Errorf("unexpected voices: %v", voices)
	}
}

func TestBridgeMessage(t *testing.T) {
	msg, err := NewBridgeMessage(ActionCopyToClipboard, "", ClipboardRequest{Content: "https://example/audio.mp3"})
	if err != nil {
		t.Fatalf("NewBridgeMessage: %v", err)
	}

	data, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"action":"copy-to-clipboard","payload":{"content":"https://example/audio.mp3"}}`
	if string(data) != want {
		t.Errorf("json = %s, want %s", data, want)
	}

	var req ClipboardRequest
	if err := msg.DecodePayload(&req); err != nil || req.Content != "https://example/audio.mp3" {
		t.Errorf("DecodePayload = %+v, %v", req, err)
	}

	bare, _ := NewBridgeMessage(ActionGetPageContent, "abc", nil)
	data, _ = json.Marshal(bare)
	if string(data) != `{"action":"get-page-content","request_id":"abc"}` {
		t.Errorf("json = %s", data)
	}
}

func TestBridgeMessage_PayloadString(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    string
	}{
		{"string payload", `"page text"`, "page text"},
		{"object payload", `{"content":"x"}`, ""},
		{"no payload", ``, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := BridgeMessage{Action: ActionGetPageContent}
			if tt.payload != "" {
				msg.Payload = json.RawMessage(tt.payload)
			}
			if got := msg.PayloadString(); got != tt.want {
				t.Errorf("PayloadString() = %q, want %q", got, tt.want)
			}
		})
	}
}
