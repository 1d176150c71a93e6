package recipe

import (
	"fmt"
	"strings"
	"text/template"

	"blockforge/pkg/manifest"
)

const dockerfileTemplate = `FROM {{ .BaseImage }}

ARG {{ .ManifestArg }}
LABEL "{{ .ManifestLabel }}"=${{ .ManifestArg }}
{{- if .AptPackages }}

RUN apt-get update && apt-get install -y --no-install-recommends \
    {{ join .AptPackages " \\\n    " }} \
    && rm -rf /var/lib/apt/lists/*
{{- end }}

WORKDIR {{ .Workdir }}
{{- if .PipPackages }}

COPY requirements.txt {{ .Workdir }}/
RUN pip3 install --no-cache-dir -r requirements.txt
{{- end }}
{{- range .Weights }}

COPY {{ . }} {{ $.Workdir }}/weights/
{{- end }}

COPY {{ .Source }} {{ .Workdir }}/src/

CMD [{{ quoteList .Entrypoint }}]
`

var tmpl = template.Must(template.New("dockerfile").Funcs(template.FuncMap{
	"join": strings.Join,
	"quoteList": func(items []string) string {
		quoted := make([]string, len(items))
		for i, it := range items {
			quoted[i] = fmt.Sprintf("%q", it)
		}
		return strings.Join(quoted, ", ")
	},
}).Parse(dockerfileTemplate))

type dockerfileData struct {
	*Recipe
	BaseImage     string
	ManifestArg   string
	ManifestLabel string
}

// Generate renders the Dockerfile for a recipe and the machine it targets.
func Generate(r *Recipe, m manifest.Machine) (string, error) {
	var sb strings.Builder
	err := tmpl.Execute(&sb, dockerfileData{
		Recipe:        r,
		BaseImage:     r.BaseImageFor(m),
		ManifestArg:   ManifestBuildArg,
		ManifestLabel: ManifestLabel,
	})
	if err != nil {
		return "", fmt.Errorf("rendering Dockerfile: %w", err)
	}
	return sb.String(), nil
}

// Requirements renders the pip requirements file, one package per line.
func (r *Recipe) Requirements() string {
	if len(r.PipPackages) == 0 {
		return ""
	}
	return strings.Join(r.PipPackages, "\n") + "\n"
}
