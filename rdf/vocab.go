package rdf

const blankNodePrefix = "_:"

// RDF and XSD vocabulary used by the emitter and the N-Quads codec.
const (
	rdfNS = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	xsdNS = "http://www.w3.org/2001/XMLSchema#"

	RDFType          = rdfNS + "type"
	RDFFirst         = rdfNS + "first"
	RDFRest          = rdfNS + "rest"
	RDFNil           = rdfNS + "nil"
	RDFLangString    = rdfNS + "langString"
	RDFDirLangString = rdfNS + "dirLangString"
	RDFJSON          = rdfNS + "JSON"

	XSDString  = xsdNS + "string"
	XSDBoolean = xsdNS + "boolean"
	XSDInteger = xsdNS + "integer"
	XSDDouble  = xsdNS + "double"

	i18nNS = "https://www.w3.org/ns/i18n#"
)
