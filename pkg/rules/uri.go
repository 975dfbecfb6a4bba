package rules

import (
	"fmt"
	"net/url"
	"strings"
	"unicode"
)

var validURISchemes = map[string]struct{}{
	"http":  {},
	"https": {},
}

// URIValidator checks every Uri element for a value, a supported
// protocol, a domain, and ascii encoding.
type URIValidator struct {
	ctx *Context
}

func NewURIValidator(ctx *Context) *URIValidator { return &URIValidator{ctx: ctx} }

func (r *URIValidator) Name() string { return "URIValidator" }

func (r *URIValidator) Elements() []string { return []string{"Uri"} }

func (r *URIValidator) CheckElement(el *element) *Issue {
	value := el.TrimmedText()
	if value == "" {
		return Errorf("Missing URI value.").At(el.Line)
	}

	var findings []Finding
	add := func(format string, args ...any) {
		findings = append(findings, Finding{
			Message: fmt.Sprintf(format, args...),
			Line:    el.Line,
		})
	}

	parsed, err := url.Parse(value)
	if err != nil {
		add("%q is not a parseable URI", value)
		return Aggregate(SeverityError, fmt.Sprintf("URI %q is invalid", value), findings)
	}
	if _, ok := validURISchemes[parsed.Scheme]; !ok {
		add("%q protocol - invalid", value)
	}
	if parsed.Host == "" {
		add("%q domain - missing", value)
	}
	for _, c := range value {
		if c > unicode.MaxASCII {
			add("%q not ascii encoded", value)
			break
		}
	}

	if len(findings) == 0 {
		return nil
	}
	return Aggregate(SeverityError, fmt.Sprintf("URI %q is invalid", value), findings)
}

// usage types whose annotation requires a platform suffix.
var uriUsageTypes = map[string]struct{}{
	"personal": {},
	"official": {},
	"campaign": {},
}

// platforms accepted in annotations, with or without a usage prefix.
var uriPlatforms = map[string]struct{}{
	"facebook":    {},
	"twitter":     {},
	"x":           {},
	"instagram":   {},
	"youtube":     {},
	"linkedin":    {},
	"website":     {},
	"wikipedia":   {},
	"ballotpedia": {},
	"opensecrets": {},
	"fulltext":    {},
}

// platformDomains maps annotation platforms to the domain the URI must
// point at.
var platformDomains = map[string]string{
	"facebook":    "facebook.com",
	"twitter":     "twitter.com",
	"x":           "x.com",
	"instagram":   "instagram.com",
	"youtube":     "youtube.com",
	"linkedin":    "linkedin.com",
	"wikipedia":   "wikipedia.org",
	"ballotpedia": "ballotpedia.org",
}

// ValidURIAnnotation checks the annotation attribute on contact URIs:
// the annotation must be present, structured as usage-platform, and
// consistent with the URI's domain.
type ValidURIAnnotation struct {
	ctx *Context
}

func NewValidURIAnnotation(ctx *Context) *ValidURIAnnotation {
	return &ValidURIAnnotation{ctx: ctx}
}

func (r *ValidURIAnnotation) Name() string { return "ValidURIAnnotation" }

func (r *ValidURIAnnotation) Elements() []string { return []string{"ContactInformation"} }

func (r *ValidURIAnnotation) CheckElement(el *element) *Issue {
	var findings []Finding
	for _, uri := range el.FindAll("Uri") {
		value := uri.TrimmedText()
		annotation := strings.TrimSpace(uri.AttrValue("Annotation"))
		if annotation == "" {
			findings = append(findings, Finding{
				Message: fmt.Sprintf("URI %q is missing annotation", value),
				Line:    uri.Line,
			})
			continue
		}

		usage, platform, hasPlatform := strings.Cut(annotation, "-")
		if hasPlatform {
			_, usageOK := uriUsageTypes[usage]
			_, platformKnown := uriPlatforms[platform]
			switch {
			case usageOK && platform == "":
				findings = append(findings, Finding{
					Message: fmt.Sprintf("annotation %q has usage type, missing platform.", annotation),
					Line:    uri.Line,
				})
				continue
			case !usageOK && platformKnown:
				findings = append(findings, Finding{
					Message: fmt.Sprintf("annotation %q is missing usage type.", annotation),
					Line:    uri.Line,
				})
				continue
			case !usageOK || !platformKnown:
				findings = append(findings, Finding{
					Message: fmt.Sprintf("%q is not a valid annotation.", annotation),
					Line:    uri.Line,
				})
				continue
			}
		} else {
			// A single token must itself be a known platform.
			platform = usage
			if _, usageOnly := uriUsageTypes[platform]; usageOnly {
				findings = append(findings, Finding{
					Message: fmt.Sprintf("annotation %q has usage type, missing platform.", annotation),
					Line:    uri.Line,
				})
				continue
			}
			if _, ok := uriPlatforms[platform]; !ok {
				findings = append(findings, Finding{
					Message: fmt.Sprintf("%q is not a valid annotation.", annotation),
					Line:    uri.Line,
				})
				continue
			}
		}

		domain, ok := platformDomains[platform]
		if !ok {
			continue
		}
		parsed, err := url.Parse(value)
		if err != nil || parsed.Host == "" {
			continue
		}
		host := strings.TrimPrefix(strings.ToLower(parsed.Host), "www.")
		if host != domain && !strings.HasSuffix(host, "."+domain) {
			findings = append(findings, Finding{
				Message: fmt.Sprintf("annotation platform %q is incorrect for URI %q", platform, value),
				Line:    uri.Line,
			})
		}
	}

	if len(findings) == 0 {
		return nil
	}
	return Aggregate(SeverityError, "contact URIs with invalid annotations", findings)
}
