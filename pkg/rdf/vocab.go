package rdf

// Well-known namespaces
const (
	RDFNamespace  = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	RDFSNamespace = "http://www.w3.org/2000/01/rdf-schema#"
	OWLNamespace  = "http://www.w3.org/2002/07/owl#"
	XSDNamespace  = "http://www.w3.org/2001/XMLSchema#"
)

// RDF vocabulary
var (
	RDFType       = NewNamedNode(RDFNamespace + "type")
	RDFFirst      = NewNamedNode(RDFNamespace + "first")
	RDFRest       = NewNamedNode(RDFNamespace + "rest")
	RDFNil        = NewNamedNode(RDFNamespace + "nil")
	RDFLangString = NewNamedNode(RDFNamespace + "langString")
)

// RDFS vocabulary
var (
	RDFSSubClassOf    = NewNamedNode(RDFSNamespace + "subClassOf")
	RDFSSubPropertyOf = NewNamedNode(RDFSNamespace + "subPropertyOf")
	RDFSDomain        = NewNamedNode(RDFSNamespace + "domain")
	RDFSRange         = NewNamedNode(RDFSNamespace + "range")
	RDFSDatatype      = NewNamedNode(RDFSNamespace + "Datatype")
	RDFSLiteral       = NewNamedNode(RDFSNamespace + "Literal")
	RDFSLabel         = NewNamedNode(RDFSNamespace + "label")
	RDFSComment       = NewNamedNode(RDFSNamespace + "comment")
)

// OWL vocabulary
var (
	OWLOntology                  = NewNamedNode(OWLNamespace + "Ontology")
	OWLVersionIRI                = NewNamedNode(OWLNamespace + "versionIRI")
	OWLImports                   = NewNamedNode(OWLNamespace + "imports")
	OWLClass                     = NewNamedNode(OWLNamespace + "Class")
	OWLThing                     = NewNamedNode(OWLNamespace + "Thing")
	OWLRestriction               = NewNamedNode(OWLNamespace + "Restriction")
	OWLObjectProperty            = NewNamedNode(OWLNamespace + "ObjectProperty")
	OWLDatatypeProperty          = NewNamedNode(OWLNamespace + "DatatypeProperty")
	OWLAnnotationProperty        = NewNamedNode(OWLNamespace + "AnnotationProperty")
	OWLNamedIndividual           = NewNamedNode(OWLNamespace + "NamedIndividual")
	OWLNegativePropertyAssertion = NewNamedNode(OWLNamespace + "NegativePropertyAssertion")
	OWLIntersectionOf            = NewNamedNode(OWLNamespace + "intersectionOf")
	OWLUnionOf                   = NewNamedNode(OWLNamespace + "unionOf")
	OWLComplementOf              = NewNamedNode(OWLNamespace + "complementOf")
	OWLDatatypeComplementOf      = NewNamedNode(OWLNamespace + "datatypeComplementOf")
	OWLOneOf                     = NewNamedNode(OWLNamespace + "oneOf")
	OWLOnProperty                = NewNamedNode(OWLNamespace + "onProperty")
	OWLAllValuesFrom             = NewNamedNode(OWLNamespace + "allValuesFrom")
	OWLSomeValuesFrom            = NewNamedNode(OWLNamespace + "someValuesFrom")
	OWLHasValue                  = NewNamedNode(OWLNamespace + "hasValue")
	OWLHasSelf                   = NewNamedNode(OWLNamespace + "hasSelf")
	OWLMinCardinality            = NewNamedNode(OWLNamespace + "minCardinality")
	OWLMaxCardinality            = NewNamedNode(OWLNamespace + "maxCardinality")
	OWLCardinality               = NewNamedNode(OWLNamespace + "cardinality")
	OWLMinQualifiedCardinality   = NewNamedNode(OWLNamespace + "minQualifiedCardinality")
	OWLMaxQualifiedCardinality   = NewNamedNode(OWLNamespace + "maxQualifiedCardinality")
	OWLQualifiedCardinality      = NewNamedNode(OWLNamespace + "qualifiedCardinality")
	OWLOnClass                   = NewNamedNode(OWLNamespace + "onClass")
	OWLOnDataRange               = NewNamedNode(OWLNamespace + "onDataRange")
	OWLOnDatatype                = NewNamedNode(OWLNamespace + "onDatatype")
	OWLWithRestrictions          = NewNamedNode(OWLNamespace + "withRestrictions")
	OWLInverseOf                 = NewNamedNode(OWLNamespace + "inverseOf")
	OWLEquivalentClass           = NewNamedNode(OWLNamespace + "equivalentClass")
	OWLDisjointWith              = NewNamedNode(OWLNamespace + "disjointWith")
	OWLDisjointUnionOf           = NewNamedNode(OWLNamespace + "disjointUnionOf")
	OWLEquivalentProperty        = NewNamedNode(OWLNamespace + "equivalentProperty")
	OWLPropertyDisjointWith      = NewNamedNode(OWLNamespace + "propertyDisjointWith")
	OWLSameAs                    = NewNamedNode(OWLNamespace + "sameAs")
	OWLDifferentFrom             = NewNamedNode(OWLNamespace + "differentFrom")
	OWLSourceIndividual          = NewNamedNode(OWLNamespace + "sourceIndividual")
	OWLAssertionProperty         = NewNamedNode(OWLNamespace + "assertionProperty")
	OWLTargetIndividual          = NewNamedNode(OWLNamespace + "targetIndividual")
	OWLTargetValue               = NewNamedNode(OWLNamespace + "targetValue")
	OWLFunctionalProperty        = NewNamedNode(OWLNamespace + "FunctionalProperty")
	OWLInverseFunctionalProperty = NewNamedNode(OWLNamespace + "InverseFunctionalProperty")
	OWLTransitiveProperty        = NewNamedNode(OWLNamespace + "TransitiveProperty")
	OWLSymmetricProperty         = NewNamedNode(OWLNamespace + "SymmetricProperty")
	OWLAsymmetricProperty        = NewNamedNode(OWLNamespace + "AsymmetricProperty")
	OWLReflexiveProperty         = NewNamedNode(OWLNamespace + "ReflexiveProperty")
	OWLIrreflexiveProperty       = NewNamedNode(OWLNamespace + "IrreflexiveProperty")
)

// XSD datatypes
var (
	XSDString             = NewNamedNode(XSDNamespace + "string")
	XSDInteger            = NewNamedNode(XSDNamespace + "integer")
	XSDNonNegativeInteger = NewNamedNode(XSDNamespace + "nonNegativeInteger")
	XSDDecimal            = NewNamedNode(XSDNamespace + "decimal")
	XSDDouble             = NewNamedNode(XSDNamespace + "double")
	XSDFloat              = NewNamedNode(XSDNamespace + "float")
	XSDBoolean            = NewNamedNode(XSDNamespace + "boolean")
	XSDDateTime           = NewNamedNode(XSDNamespace + "dateTime")
)

// XSD constraining facets
var (
	XSDLength       = NewNamedNode(XSDNamespace + "length")
	XSDMinLength    = NewNamedNode(XSDNamespace + "minLength")
	XSDMaxLength    = NewNamedNode(XSDNamespace + "maxLength")
	XSDPattern      = NewNamedNode(XSDNamespace + "pattern")
	XSDLangPattern  = NewNamedNode(XSDNamespace + "langPattern")
	XSDMinInclusive = NewNamedNode(XSDNamespace + "minInclusive")
	XSDMinExclusive = NewNamedNode(XSDNamespace + "minExclusive")
	XSDMaxInclusive = NewNamedNode(XSDNamespace + "maxInclusive")
	XSDMaxExclusive = NewNamedNode(XSDNamespace + "maxExclusive")
)
