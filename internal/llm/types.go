package llm

import "context"

// Role is the message role used in chat exchanges.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatMessage represents a single message exchanged with the model.
type ChatMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the input for text providers.
type ChatRequest struct {
	Model       string
	Messages    []ChatMessage
	MaxTokens   int
	Temperature float64
}

// ChatResponse is the result of a chat completion.
type ChatResponse struct {
	Message      ChatMessage
	FinishReason string
	ProviderName string
	Model        string
}

// VisionMode selects the task a vision query performs.
type VisionMode string

const (
	// VisionLocate asks for start/end object bounding boxes in JSON.
	VisionLocate VisionMode = "locate"
	// VisionDescribe asks for a free-text answer about the scene.
	VisionDescribe VisionMode = "describe"
)

// VisionRequest is the input for vision providers: one instruction plus one
// image referenced by path.
type VisionRequest struct {
	Model       string
	Instruction string
	ImagePath   string
	Mode        VisionMode
}

// Provider defines the contract for text LLM backends. Implementations hold
// transport and auth details for exactly one backend and carry no retry
// logic; fallback belongs to the router.
type Provider interface {
	Name() string
	Chat(ctx context.Context, req ChatRequest) (ChatResponse, error)
}

// VisionProvider defines the contract for multimodal backends.
type VisionProvider interface {
	Name() string
	Analyze(ctx context.Context, req VisionRequest) (string, error)
}
