package prompt

import "fmt"

// OperationType selects which generation workflow is requested.
type OperationType string

const (
	OpExisting OperationType = "existing" // cases for a feature of a known product
	OpNew      OperationType = "new"      // cases for a feature with no prior coverage
	OpCompare  OperationType = "compare"  // cases contrasting two products
)

// GenerationType selects the shape of the output.
type GenerationType string

const (
	GenTestCase  GenerationType = "test_case"
	GenTestSuite GenerationType = "test_suite"
)

// Template holds the system and user prompt text for one (operation,
// generation) pair. The user text carries {{context}}, {{feedback}},
// {{feature}}, {{product_a}}, {{product_b}} and {{max_cases}}
// placeholders that Builder fills in.
type Template struct {
	System string
	User   string
}

type templateKey struct {
	Op  OperationType
	Gen GenerationType
}

// TemplateSet maps (operation, generation) pairs to templates.
type TemplateSet struct {
	templates map[templateKey]Template
}

// NewTemplateSet returns an empty set.
func NewTemplateSet() *TemplateSet {
	return &TemplateSet{templates: make(map[templateKey]Template)}
}

// Register stores a template for the given pair, replacing any previous one.
func (s *TemplateSet) Register(op OperationType, gen GenerationType, t Template) {
	s.templates[templateKey{Op: op, Gen: gen}] = t
}

// Lookup returns the template for the pair or an error when none is registered.
func (s *TemplateSet) Lookup(op OperationType, gen GenerationType) (Template, error) {
	t, ok := s.templates[templateKey{Op: op, Gen: gen}]
	if !ok {
		return Template{}, fmt.Errorf("no template registered for operation %q generation %q", op, gen)
	}
	return t, nil
}

const outputSchemaInstructions = `Format every test case exactly like this, one block per case:

Test Case N:
Description: <one sentence stating what the case verifies>
Preconditions:
- <precondition>
Steps:
1. <action>
2. <action>
Expected Result: <observable outcome>

Do not add commentary before the first case or after the last one.`

const systemTester = `You are a senior QA engineer. You write precise, executable test cases strictly grounded in the product documentation provided. Never invent behavior the documentation does not describe.`

// DefaultTemplates returns the built-in template set covering every
// supported (operation, generation) pair.
func DefaultTemplates() *TemplateSet {
	s := NewTemplateSet()

	s.Register(OpExisting, GenTestCase, Template{
		System: systemTester,
		User: `Product documentation for {{product_a}}:
{{context}}
{{feedback}}
Write exactly one test case for the feature "{{feature}}" of {{product_a}}. Cover the most important documented behavior of the feature.

` + outputSchemaInstructions,
	})

	s.Register(OpExisting, GenTestSuite, Template{
		System: systemTester,
		User: `Product documentation for {{product_a}}:
{{context}}
{{feedback}}
Write a test suite of at most {{max_cases}} test cases for the feature "{{feature}}" of {{product_a}}. Order the cases from basic functionality to edge cases and keep each case independent of the others.

` + outputSchemaInstructions,
	})

	s.Register(OpNew, GenTestCase, Template{
		System: systemTester,
		User: `Product documentation for {{product_a}}:
{{context}}
{{feedback}}
The feature "{{feature}}" of {{product_a}} has no existing test coverage. Write exactly one test case for it based on the documentation, covering the primary success path.

` + outputSchemaInstructions,
	})

	s.Register(OpNew, GenTestSuite, Template{
		System: systemTester,
		User: `Product documentation for {{product_a}}:
{{context}}
{{feedback}}
The feature "{{feature}}" of {{product_a}} has no existing test coverage. Write a test suite of at most {{max_cases}} test cases for it based on the documentation, ordered from the primary success path to edge cases.

` + outputSchemaInstructions,
	})

	s.Register(OpCompare, GenTestCase, Template{
		System: systemTester,
		User: `Documentation for {{product_a}}:
{{context_a}}

Documentation for {{product_b}}:
{{context_b}}
{{feedback}}
Write exactly one test case for the feature "{{feature}}" exercising the most significant difference in behavior between {{product_a}} and {{product_b}}. The description must name which product the case targets.

` + outputSchemaInstructions,
	})

	s.Register(OpCompare, GenTestSuite, Template{
		System: systemTester,
		User: `Documentation for {{product_a}}:
{{context_a}}

Documentation for {{product_b}}:
{{context_b}}
{{feedback}}
Write a test suite of at most {{max_cases}} test cases for the feature "{{feature}}" covering the differences in behavior between {{product_a}} and {{product_b}}. Every case must name which product it targets in its description.

` + outputSchemaInstructions,
	})

	return s
}
