package image

import "context"

type Params struct {
	Prompt string `json:"prompt"`
}

type Generator interface {
	Generate(context.Context, Params) (*Handle, error)
}
