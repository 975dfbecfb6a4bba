package rules

import (
	"bufio"
	"os"
	"regexp"
	"strings"

	"github.com/jacoelho/xsd"
	xsderrors "github.com/jacoelho/xsd/errors"
)

// SchemaConformance validates the feed against the compiled schema.
// It runs first in the registry; the schema itself failing to compile is
// handled by the orchestrator before any rule runs.
type SchemaConformance struct {
	ctx    *Context
	schema *xsd.Schema
}

// NewSchemaConformance wires the precompiled schema into the rule.
func NewSchemaConformance(ctx *Context, schema *xsd.Schema) *SchemaConformance {
	return &SchemaConformance{ctx: ctx, schema: schema}
}

func (r *SchemaConformance) Name() string { return "Schema" }

func (r *SchemaConformance) CheckTree() *Issue {
	if r.ctx.FeedPath == "" {
		return nil
	}
	if r.schema == nil {
		r.schema = r.ctx.Schema
	}
	if r.schema == nil {
		if r.ctx.SchemaPath == "" {
			return nil
		}
		schema, err := xsd.LoadFile(r.ctx.SchemaPath)
		if err != nil {
			return Errorf("cannot compile schema %s: %v", r.ctx.SchemaPath, err)
		}
		r.schema = schema
	}

	err := r.schema.ValidateFile(r.ctx.FeedPath)
	if err == nil {
		return nil
	}

	validations, ok := xsderrors.AsValidations(err)
	if !ok {
		return Errorf("schema validation failed: %v", err)
	}

	findings := make([]Finding, len(validations))
	for i, v := range validations {
		findings[i] = Finding{Message: v.Message, Line: v.Line}
	}
	return Aggregate(SeverityError, "feed does not conform to the schema", findings)
}

var encodingDeclRe = regexp.MustCompile(`encoding="([^"]+)"`)

// Encoding checks that the feed's XML declaration names UTF-8. A feed
// without a declaration defaults to UTF-8 and passes.
type Encoding struct {
	ctx *Context
}

func NewEncoding(ctx *Context) *Encoding { return &Encoding{ctx: ctx} }

func (r *Encoding) Name() string { return "Encoding" }

func (r *Encoding) CheckTree() *Issue {
	if r.ctx.FeedPath == "" {
		return nil
	}

	f, err := os.Open(r.ctx.FeedPath)
	if err != nil {
		return Errorf("cannot read feed to verify encoding: %v", err)
	}
	defer f.Close()

	// The declaration, when present, is the first line.
	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		return nil
	}
	first := scanner.Text()
	if !strings.HasPrefix(strings.TrimSpace(first), "<?xml") {
		return nil
	}

	m := encodingDeclRe.FindStringSubmatch(first)
	if m == nil {
		return nil
	}
	if !strings.EqualFold(m[1], "UTF-8") {
		return Errorf("encoding on file is not UTF-8")
	}
	return nil
}
