package page

import (
	"bytes"
	"context"
	_ "embed"
	"html/template"
	"strings"
	"sync"

	"github.com/dmorgan81/imagine/internal/log"
	"github.com/samber/do"
	"github.com/samber/lo"
)

//go:embed assets/page.html
var pageTmpl string

type Params struct {
	// Image is the img src: a relative object name or a data: URI.
	Image   string
	Prompt  string
	Created string
}

type Templator struct {
	tmpl *template.Template
	once sync.Once
}

func NewTemplator(*do.Injector) (*Templator, error) {
	return &Templator{}, nil
}

func (g *Templator) Template(ctx context.Context, params Params) ([]byte, error) {
	g.once.Do(func() {
		g.tmpl = template.Must(template.New("page").Parse(pageTmpl))
	})

	log := log.FromContextOrDiscard(ctx).WithGroup("templator")
	log.Info("generating page")

	var data bytes.Buffer
	if err := g.tmpl.Execute(&data, struct {
		Image   any
		Prompt  string
		Created string
	}{imageSrc(params.Image), params.Prompt, params.Created}); err != nil {
		return nil, err
	}
	return data.Bytes(), nil
}

// imageSrc trusts only inline image data; anything else goes through the
// template's URL filtering.
func imageSrc(src string) any {
	return lo.Ternary[any](strings.HasPrefix(src, "data:image/"), template.URL(src), src)
}
