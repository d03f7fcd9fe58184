package report

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// SchemaKinds lists the report shapes Schema can describe.
var SchemaKinds = []string{"list", "describe", "run"}

// Schema produces a JSON Schema (Draft 2020-12) for the --json output of
// the named command.
func Schema(kind string) ([]byte, error) {
	var v any
	switch kind {
	case "list":
		v = &ListReport{}
	case "describe":
		v = &DescribeReport{}
	case "run":
		v = &RunReport{}
	default:
		return nil, fmt.Errorf("unknown schema kind %q (want list, describe or run)", kind)
	}

	r := new(jsonschema.Reflector)
	s := r.Reflect(v)
	s.ID = jsonschema.ID(fmt.Sprintf("https://github.com/ormasoftchile/playctl/schemas/%s-report.json", kind))
	s.Title = fmt.Sprintf("playctl %s report", kind)

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	return data, nil
}
