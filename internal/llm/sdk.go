package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// sender is one vendor's request translation.
type sender interface {
	send(ctx context.Context, model string, req Request) (*Response, error)
}

// sdkProvider adapts a sender to Provider and checks structured output
// against the request schema.
type sdkProvider struct {
	model  string
	sender sender
}

func (p *sdkProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	resp, err := p.sender.send(ctx, p.model, req)
	if err != nil {
		return nil, err
	}
	if resp.Model == "" {
		resp.Model = p.model
	}
	if req.Schema == nil {
		return resp, nil
	}
	if resp.StopReason == StopMaxTokens {
		return nil, &Error{Kind: KindTruncated, Content: resp.Content}
	}
	if err := checkSchema(req.Schema, resp.Content); err != nil {
		return nil, err
	}
	return resp, nil
}

func (p *sdkProvider) ModelID() string {
	return p.model
}

var compiled sync.Map // schema name -> *jsonschema.Schema

// checkSchema validates raw against s, returning a KindInvalidResponse
// error on any mismatch.
func checkSchema(s *Schema, raw json.RawMessage) error {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return invalid(raw, "not JSON: %w", err)
	}

	sch, err := compile(s)
	if err != nil {
		return invalid(raw, "schema %s: %w", s.Name, err)
	}
	if err := sch.Validate(doc); err != nil {
		return invalid(raw, "%w", err)
	}
	return nil
}

func compile(s *Schema) (*jsonschema.Schema, error) {
	if v, ok := compiled.Load(s.Name); ok {
		return v.(*jsonschema.Schema), nil
	}

	// The compiler wants decoded JSON values, not Go maps of arbitrary
	// types, so round-trip the definition.
	b, err := json.Marshal(s.Definition)
	if err != nil {
		return nil, err
	}
	def, err := jsonschema.UnmarshalJSON(bytes.NewReader(b))
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("mem://schemas/%s.json", s.Name)
	c := jsonschema.NewCompiler()
	if err := c.AddResource(url, def); err != nil {
		return nil, err
	}
	sch, err := c.Compile(url)
	if err != nil {
		return nil, err
	}
	compiled.Store(s.Name, sch)
	return sch, nil
}
