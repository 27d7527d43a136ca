package simulation

// SpecialTag is the rendering prefix of the special agent variant.
const SpecialTag = "[Special Agent]"

// TaggedAgent is an agent variant that only changes how the agent renders.
// Every other operation goes to the wrapped agent unchanged.
type TaggedAgent struct {
	Agent
	tag string
}

// NewTaggedAgent wraps agent so that its rendering is prefixed with tag.
func NewTaggedAgent(agent Agent, tag string) *TaggedAgent {
	return &TaggedAgent{Agent: agent, tag: tag}
}

// NewSpecialAgent wraps agent as the special variant.
func NewSpecialAgent(agent Agent) *TaggedAgent {
	return NewTaggedAgent(agent, SpecialTag)
}

// Tag returns the rendering prefix.
func (t *TaggedAgent) Tag() string {
	return t.tag
}

// Unwrap returns the wrapped agent.
func (t *TaggedAgent) Unwrap() Agent {
	return t.Agent
}

func (t *TaggedAgent) String() string {
	return t.tag + t.Agent.String()
}
