package llm

import "context"

// StubClient is a deterministic client for testing. It records every prompt
// it receives and pops canned responses in order, repeating the last one
// when it runs out.
type StubClient struct {
	Responses []string
	Err       error
	Prompts   []string
}

func NewStubClient(responses ...string) *StubClient {
	return &StubClient{Responses: responses}
}

func (c *StubClient) Generate(ctx context.Context, prompt string) (string, error) {
	c.Prompts = append(c.Prompts, prompt)
	if c.Err != nil {
		return "", c.Err
	}
	if len(c.Responses) == 0 {
		return "", nil
	}
	response := c.Responses[0]
	if len(c.Responses) > 1 {
		c.Responses = c.Responses[1:]
	}
	return response, nil
}

func (c *StubClient) Name() string {
	return "stub"
}
