package manchester

import (
	"slices"

	"github.com/aleksaelezovic/komma/pkg/owl"
	"github.com/aleksaelezovic/komma/pkg/rdf"
)

// parseFrame parses one entity frame. It reports false, consuming nothing,
// when no frame keyword follows.
func (p *Parser) parseFrame() (owl.Frame, bool, error) {
	var (
		frame owl.Frame
		err   error
	)
	switch p.peekWord() {
	case "Class:":
		p.consumeWord()
		frame, err = p.parseClassFrame()
	case "ObjectProperty:":
		p.consumeWord()
		frame, err = p.parseObjectPropertyFrame()
	case "DataProperty:":
		p.consumeWord()
		frame, err = p.parseDataPropertyFrame()
	case "AnnotationProperty:":
		p.consumeWord()
		frame, err = p.parseAnnotationPropertyFrame()
	case "Individual:":
		p.consumeWord()
		frame, err = p.parseIndividualFrame()
	case "Datatype:":
		p.consumeWord()
		frame, err = p.parseDatatypeFrame()
	default:
		return nil, false, nil
	}
	if err != nil {
		return nil, true, err
	}
	return frame, true, nil
}

func (p *Parser) parseClassFrame() (owl.Frame, error) {
	iri, err := p.parseIRI()
	if err != nil {
		return nil, err
	}
	f := &owl.ClassFrame{IRI: iri}
	for {
		switch {
		case p.matchWord("Annotations:"):
			f.Annotations, err = p.appendAnnotations(f.Annotations)
		case p.matchWord("SubClassOf:"):
			f.SubClassOf, err = p.appendDescriptions(f.SubClassOf)
		case p.matchWord("EquivalentTo:"):
			f.EquivalentTo, err = p.appendDescriptions(f.EquivalentTo)
		case p.matchWord("DisjointWith:"):
			f.DisjointWith, err = p.appendDescriptions(f.DisjointWith)
		case p.matchWord("DisjointUnionOf:"):
			f.DisjointUnionOf, err = p.appendDescriptions(f.DisjointUnionOf)
		default:
			return f, nil
		}
		if err != nil {
			return nil, err
		}
	}
}

func (p *Parser) parseObjectPropertyFrame() (owl.Frame, error) {
	iri, err := p.parseIRI()
	if err != nil {
		return nil, err
	}
	f := &owl.ObjectPropertyFrame{IRI: iri}
	for {
		switch {
		case p.matchWord("Annotations:"):
			f.Annotations, err = p.appendAnnotations(f.Annotations)
		case p.matchWord("Domain:"):
			f.Domain, err = p.appendDescriptions(f.Domain)
		case p.matchWord("Range:"):
			f.Range, err = p.appendDescriptions(f.Range)
		case p.matchWord("Characteristics:"):
			f.Characteristics, err = p.appendCharacteristics(f.Characteristics, objectCharacteristics)
		case p.matchWord("SubPropertyOf:"):
			f.SubPropertyOf, err = p.appendProperties(f.SubPropertyOf)
		case p.matchWord("EquivalentTo:"):
			f.EquivalentTo, err = p.appendProperties(f.EquivalentTo)
		case p.matchWord("DisjointWith:"):
			f.DisjointWith, err = p.appendProperties(f.DisjointWith)
		case p.matchWord("InverseOf:"):
			f.InverseOf, err = p.appendProperties(f.InverseOf)
		default:
			return f, nil
		}
		if err != nil {
			return nil, err
		}
	}
}

func (p *Parser) parseDataPropertyFrame() (owl.Frame, error) {
	iri, err := p.parseIRI()
	if err != nil {
		return nil, err
	}
	f := &owl.DataPropertyFrame{IRI: iri}
	for {
		switch {
		case p.matchWord("Annotations:"):
			f.Annotations, err = p.appendAnnotations(f.Annotations)
		case p.matchWord("Domain:"):
			f.Domain, err = p.appendDescriptions(f.Domain)
		case p.matchWord("Range:"):
			f.Range, err = p.appendDescriptions(f.Range)
		case p.matchWord("Characteristics:"):
			var characteristics []owl.Characteristic
			characteristics, err = p.appendCharacteristics(nil, dataCharacteristics)
			f.Functional = f.Functional || len(characteristics) > 0
		case p.matchWord("SubPropertyOf:"):
			f.SubPropertyOf, err = p.appendProperties(f.SubPropertyOf)
		case p.matchWord("EquivalentTo:"):
			f.EquivalentTo, err = p.appendProperties(f.EquivalentTo)
		case p.matchWord("DisjointWith:"):
			f.DisjointWith, err = p.appendProperties(f.DisjointWith)
		default:
			return f, nil
		}
		if err != nil {
			return nil, err
		}
	}
}

func (p *Parser) parseAnnotationPropertyFrame() (owl.Frame, error) {
	iri, err := p.parseIRI()
	if err != nil {
		return nil, err
	}
	f := &owl.AnnotationPropertyFrame{IRI: iri}
	for {
		switch {
		case p.matchWord("Annotations:"):
			f.Annotations, err = p.appendAnnotations(f.Annotations)
		case p.matchWord("Domain:"):
			f.Domain, err = p.appendIRIs(f.Domain)
		case p.matchWord("Range:"):
			f.Range, err = p.appendIRIs(f.Range)
		case p.matchWord("SubPropertyOf:"):
			f.SubPropertyOf, err = p.appendIRIs(f.SubPropertyOf)
		default:
			return f, nil
		}
		if err != nil {
			return nil, err
		}
	}
}

func (p *Parser) parseIndividualFrame() (owl.Frame, error) {
	individual, err := p.parseIndividual()
	if err != nil {
		return nil, err
	}
	f := &owl.IndividualFrame{Individual: individual}
	for {
		switch {
		case p.matchWord("Annotations:"):
			f.Annotations, err = p.appendAnnotations(f.Annotations)
		case p.matchWord("Types:"):
			f.Types, err = p.appendDescriptions(f.Types)
		case p.matchWord("Facts:"):
			f.Facts, err = p.appendFacts(f.Facts)
		case p.matchWord("SameAs:"):
			f.SameAs, err = p.appendIndividuals(f.SameAs)
		case p.matchWord("DifferentFrom:"):
			f.DifferentFrom, err = p.appendIndividuals(f.DifferentFrom)
		default:
			return f, nil
		}
		if err != nil {
			return nil, err
		}
	}
}

func (p *Parser) parseDatatypeFrame() (owl.Frame, error) {
	iri, err := p.parseIRI()
	if err != nil {
		return nil, err
	}
	f := &owl.DatatypeFrame{IRI: iri}
	for {
		switch {
		case p.matchWord("Annotations:"):
			f.Annotations, err = p.appendAnnotations(f.Annotations)
		case p.matchWord("EquivalentTo:"):
			f.EquivalentTo, err = p.appendDescriptions(f.EquivalentTo)
		default:
			return f, nil
		}
		if err != nil {
			return nil, err
		}
	}
}

// Section lists. Every list is item { ',' item }.

func (p *Parser) appendDescriptions(list []owl.ClassExpression) ([]owl.ClassExpression, error) {
	for {
		ce, err := p.parseDescription()
		if err != nil {
			return nil, err
		}
		list = append(list, ce)
		if !p.matchChar(',') {
			return list, nil
		}
	}
}

func (p *Parser) appendProperties(list []*owl.PropertyExpression) ([]*owl.PropertyExpression, error) {
	for {
		pe, err := p.parsePropertyExpression()
		if err != nil {
			return nil, err
		}
		list = append(list, pe)
		if !p.matchChar(',') {
			return list, nil
		}
	}
}

func (p *Parser) appendIRIs(list []string) ([]string, error) {
	for {
		iri, err := p.parseIRI()
		if err != nil {
			return nil, err
		}
		list = append(list, iri)
		if !p.matchChar(',') {
			return list, nil
		}
	}
}

func (p *Parser) appendIndividuals(list []rdf.Term) ([]rdf.Term, error) {
	for {
		individual, err := p.parseIndividual()
		if err != nil {
			return nil, err
		}
		list = append(list, individual)
		if !p.matchChar(',') {
			return list, nil
		}
	}
}

var (
	objectCharacteristics = []owl.Characteristic{
		owl.Functional, owl.InverseFunctional, owl.Transitive, owl.Symmetric,
		owl.Asymmetric, owl.Reflexive, owl.Irreflexive,
	}
	dataCharacteristics = []owl.Characteristic{owl.Functional}
)

func (p *Parser) appendCharacteristics(list []owl.Characteristic, allowed []owl.Characteristic) ([]owl.Characteristic, error) {
	expected := make([]string, len(allowed))
	for i, c := range allowed {
		expected[i] = string(c)
	}
	for {
		word := p.peekWord()
		if !slices.Contains(expected, word) {
			return nil, p.fail(expected...)
		}
		p.pos += len(word)
		list = append(list, owl.Characteristic(word))
		if !p.matchChar(',') {
			return list, nil
		}
	}
}

// appendFacts parses ['not'] property value items
func (p *Parser) appendFacts(list []*owl.Fact) ([]*owl.Fact, error) {
	for {
		negative := p.matchWord("not")
		property, err := p.parsePropertyExpression()
		if err != nil {
			return nil, err
		}
		value, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		list = append(list, &owl.Fact{Property: property, Value: value, Negative: negative})
		if !p.matchChar(',') {
			return list, nil
		}
	}
}

func (p *Parser) parseAnnotationList() ([]*owl.Annotation, error) {
	return p.appendAnnotations(nil)
}

// appendAnnotations parses annotation property value items
func (p *Parser) appendAnnotations(list []*owl.Annotation) ([]*owl.Annotation, error) {
	for {
		property, err := p.parseIRI()
		if err != nil {
			return nil, err
		}
		value, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		list = append(list, &owl.Annotation{Property: property, Value: value})
		if !p.matchChar(',') {
			return list, nil
		}
	}
}
