package domain

// ============================================================
// Assistente virtual
// ============================================================

// ChatRequest is the body of POST /v1/assistant/chat.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse is the assistant reply. Reply is always populated.
type ChatResponse struct {
	ID        string `json:"id"`
	Role      string `json:"role"`
	Reply     string `json:"reply"`
	Timestamp string `json:"timestamp"`
}

// Fixed replies used when the external model cannot answer.
const (
	AssistantUnavailable = "Desculpe, a assistente virtual está indisponível no momento."
	AssistantFailure     = "Tive um pequeno problema técnico. Por favor, tente novamente."
	AssistantEmpty       = "Não consegui formular uma resposta."
)
