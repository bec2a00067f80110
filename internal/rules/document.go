package rules

import (
	"slices"
	"strings"

	"ebacheck/internal/diag"
	"ebacheck/internal/model"
)

var docKinds = []model.Kind{model.KindDocument}

func documentRules() []Rule {
	return []Rule{
		{
			Name:     "instance-encoding",
			Code:     diag.FilingEncoding,
			Severity: diag.SevError,
			Detail:   `XBRL instance documents MUST use "UTF-8" encoding.`,
			Kinds:    docKinds,
			Single:   checkEncoding,
		},
		{
			Name:     "standalone-declaration",
			Code:     diag.FilingStandalone,
			Severity: diag.SevWarning,
			Detail:   "XBRL instance documents SHOULD NOT use the XML standalone declaration.",
			Kinds:    docKinds,
			Single:   checkStandalone,
		},
		{
			Name:     "schema-location",
			Code:     diag.FilingSchemaLocation,
			Severity: diag.SevError,
			Detail:   "@xsi:schemaLocation or @xsi:noNamespaceSchemaLocation MUST NOT be used.",
			Kinds:    docKinds,
			Single:   refsForbidden(func(d *model.Document) []model.Ref { return d.SchemaLocations }, "schema location hint %q"),
		},
		{
			Name:     "xinclude",
			Code:     diag.FilingXInclude,
			Severity: diag.SevError,
			Detail:   "XBRL instance documents MUST NOT use the XInclude specification (xi:include element).",
			Kinds:    docKinds,
			Single:   refsForbidden(func(d *model.Document) []model.Ref { return d.XIncludes }, "xi:include of %q"),
		},
		{
			Name:     "xml-base",
			Code:     diag.InstXMLBase,
			Severity: diag.SevError,
			Detail:   "The attribute @xml:base MUST NOT appear in any instance document.",
			Kinds:    docKinds,
			Single:   refsForbidden(func(d *model.Document) []model.Ref { return d.XMLBases }, "xml:base %q"),
		},
		{
			Name:     "schema-ref-absolute",
			Code:     diag.InstSchemaRefAbsolute,
			Severity: diag.SevError,
			Detail:   "The link:schemaRef element in submitted instances MUST resolve to the full published entry point URL.",
			Kinds:    docKinds,
			Single:   checkSchemaRefAbsolute,
		},
		{
			Name:     "schema-ref-single",
			Code:     diag.InstSchemaRefSingle,
			Severity: diag.SevError,
			Detail:   "Any reported XBRL instance document MUST contain only one xbrli:xbrl/link:schemaRef element.",
			Kinds:    docKinds,
			Single:   checkSchemaRefSingle,
		},
		{
			Name:     "linkbase-ref",
			Code:     diag.InstLinkbaseRef,
			Severity: diag.SevError,
			Detail:   "The element link:linkbaseRef MUST NOT be used in any instance document.",
			Kinds:    docKinds,
			Single:   refsForbidden(func(d *model.Document) []model.Ref { return d.LinkbaseRefs }, "link:linkbaseRef to %q"),
		},
		{
			Name:     "namespace-unused",
			Code:     diag.GuideUnusedPrefix,
			Severity: diag.SevWarning,
			Detail:   "Namespace prefixes that are not used SHOULD not be declared in the instance document.",
			Kinds:    docKinds,
			Single:   checkUnusedPrefixes,
		},
		{
			Name:     "namespace-canonical-prefix",
			Code:     diag.GuideCanonicalPrefix,
			Severity: diag.SevWarning,
			Detail:   "Namespace prefixes SHOULD mirror the namespace prefixes as defined by their schema author(s).",
			Kinds:    docKinds,
			Single:   checkCanonicalPrefixes,
		},
		{
			Name:     "namespace-root-only",
			Code:     diag.GuideNamespaceRoot,
			Severity: diag.SevWarning,
			Detail:   "Namespace prefix declarations SHOULD be restricted to the document element.",
			Kinds:    docKinds,
			Single:   checkNamespaceRootOnly,
		},
		{
			Name:     "namespace-multiple-prefixes",
			Code:     diag.GuideMultiplePrefixes,
			Severity: diag.SevWarning,
			Detail:   "Namespaces used in the document SHOULD be associated to a single namespace prefix.",
			Kinds:    docKinds,
			Single:   checkMultiplePrefixes,
		},
	}
}

func checkEncoding(c *Check, n model.Node) {
	enc := strings.TrimSpace(n.Doc.Encoding)
	// без XML-декларации кодировка по умолчанию UTF-8
	if enc == "" || strings.EqualFold(enc, "UTF-8") {
		return
	}
	c.Reportf(n.Loc(), "instance document is encoded as %s", enc).WithValue(enc).Emit()
}

func checkStandalone(c *Check, n model.Node) {
	if sa := n.Doc.Standalone; sa != "" {
		c.Reportf(n.Loc(), "standalone=%q declared", sa).WithValue(sa).Emit()
	}
}

// refsForbidden reports every located reference pick returns.
func refsForbidden(pick func(*model.Document) []model.Ref, format string) func(*Check, model.Node) {
	return func(c *Check, n model.Node) {
		for _, ref := range pick(n.Doc) {
			c.Reportf(locOr(ref.Loc, n.Loc()), format+" is not permitted", ref.Value).WithValue(ref.Value).Emit()
		}
	}
}

func checkSchemaRefAbsolute(c *Check, n model.Node) {
	if len(n.Doc.SchemaRefs) == 0 {
		return
	}
	ref := n.Doc.SchemaRefs[0]
	href := strings.TrimSpace(ref.Value)
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return
	}
	c.Reportf(locOr(ref.Loc, n.Loc()), "link:schemaRef %q is not an absolute entry point URL", href).WithValue(href).Emit()
}

func checkSchemaRefSingle(c *Check, n model.Node) {
	refs := n.Doc.SchemaRefs
	for i := 1; i < len(refs); i++ {
		c.Reportf(locOr(refs[i].Loc, n.Loc()), "additional link:schemaRef %q", refs[i].Value).
			WithValue(refs[i].Value).
			WithNote(locOr(refs[0].Loc, n.Loc()), "first link:schemaRef").
			Emit()
	}
}

func checkUnusedPrefixes(c *Check, n model.Node) {
	used := n.Doc.UsedPrefixes
	for _, ns := range n.Doc.Namespaces {
		if !ns.Root || ns.Prefix == "" || slices.Contains(used, ns.Prefix) {
			continue
		}
		c.Reportf(locOr(ns.Loc, n.Loc()), "namespace prefix %q (%s) is declared but never used", ns.Prefix, ns.URI).
			WithValue(ns.Prefix).
			Emit()
	}
}

func checkCanonicalPrefixes(c *Check, n model.Node) {
	canonical := n.Doc.Taxonomy.CanonicalPrefixes
	if len(canonical) == 0 {
		return
	}
	for _, ns := range n.Doc.Namespaces {
		if !ns.Root || ns.Prefix == "" {
			continue
		}
		want, ok := canonical[ns.URI]
		if !ok || want == ns.Prefix {
			continue
		}
		c.Reportf(locOr(ns.Loc, n.Loc()), "prefix %q is bound to %s; the schema author uses %q", ns.Prefix, ns.URI, want).
			WithValue(ns.Prefix).
			Emit()
	}
}

func checkNamespaceRootOnly(c *Check, n model.Node) {
	for _, ns := range n.Doc.Namespaces {
		if ns.Root {
			continue
		}
		c.Reportf(locOr(ns.Loc, n.Loc()), "namespace prefix %q declared below the document element", ns.Prefix).
			WithValue(ns.Prefix).
			Emit()
	}
}

func checkMultiplePrefixes(c *Check, n model.Node) {
	first := make(map[string]model.NamespaceDecl)
	for _, ns := range n.Doc.Namespaces {
		if !ns.Root {
			continue
		}
		prev, seen := first[ns.URI]
		if !seen {
			first[ns.URI] = ns
			continue
		}
		c.Reportf(locOr(ns.Loc, n.Loc()), "prefixes %q and %q both bind namespace %s", ns.Prefix, prev.Prefix, ns.URI).
			WithValue(ns.Prefix).
			WithNote(locOr(prev.Loc, n.Loc()), "first declared here").
			Emit()
	}
}
