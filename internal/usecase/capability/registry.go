package capability

// Registry is the fixed, ordered capability set built once at startup.
// Registration order breaks score ties, so Chat comes first.
type Registry struct {
	Capabilities []Capability
	Fallback     Capability
}

func NewRegistry(completer Completer, embedder Embedder, history HistoryStore) Registry {
	chatCap := NewChat(completer, embedder)
	return Registry{
		Capabilities: []Capability{
			chatCap,
			NewPrivacy(embedder),
			NewDebug(embedder),
			NewSummarize(completer, embedder),
			NewMemoryDump(history),
			NewMemoryClear(history),
		},
		Fallback: chatCap,
	}
}
