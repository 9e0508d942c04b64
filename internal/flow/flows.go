package flow

// NewIngestionFlow wires the content ingestion graph. Valid input moves on
// to content processing; the "none" input type and every handled failure
// drain into the terminal node.
func NewIngestionFlow(input *InputNode, content *ContentNode, end *EndNode) *Flow {
	f := NewFlow(input)
	f.Then(input, content)
	f.On(input, ActionSkip, end)
	f.On(input, ActionError, end)
	f.Then(content, end)
	f.On(content, ActionError, end)
	return f
}

// NewFaqFlow wires the FAQ generation graph, a single worker node with a
// terminal sink.
func NewFaqFlow(faq *FaqNode, end *EndNode) *Flow {
	f := NewFlow(faq)
	f.Then(faq, end)
	f.On(faq, ActionError, end)
	return f
}
