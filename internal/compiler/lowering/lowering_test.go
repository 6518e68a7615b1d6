package lowering

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simal-lang/simal/internal/compiler/ast"
	"github.com/simal-lang/simal/internal/compiler/lexer"
	"github.com/simal-lang/simal/internal/compiler/parser"
)

func mustParse(t *testing.T, source string) *ast.System {
	t.Helper()
	tokens, errs := lexer.New(source).ScanTokens()
	require.Empty(t, errs)
	sys, err := parser.Parse(tokens)
	require.NoError(t, err)
	return sys
}

func TestFullLoweringOrderPreservation(t *testing.T) {
	sys := mustParse(t, "system {\n  b: 1\n  a: 2\n  service s { x: 1 } }")
	full := Full(sys)
	entries := full["attributes"].([]entry)
	require.Len(t, entries, 2)
	assert.Equal(t, "b", entries[0]["key"])
	assert.Equal(t, "a", entries[1]["key"])
}

func TestFullLoweringAnnotationLocality(t *testing.T) {
	sys := mustParse(t, "system {\n  @deprecated\n  a: 1\n  b: 2\n}")
	full := Full(sys)
	entries := full["attributes"].([]entry)
	require.Len(t, entries, 2)
	_, hasAnn := entries[0]["annotations"]
	assert.True(t, hasAnn, "annotation should attach to 'a'")
	_, hasAnn2 := entries[1]["annotations"]
	assert.False(t, hasAnn2, "annotation must not leak onto 'b'")
}

func TestFullLoweringRoundTrip(t *testing.T) {
	sys := mustParse(t, `system {
		type: microservices
		service users {
			components: [
				database UserRepo { engine: postgres-12 }
			]
			endpoints: [
				GET /api/users/{id} -> JSON{name: str, age: int?} [auth:true]
			]
		}
	}`)

	full := Full(sys)
	data, err := json.Marshal(full)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))

	reconstructed, err := FromFull(decoded)
	require.NoError(t, err)

	require.Len(t, reconstructed.Services, 1)
	assert.Equal(t, "users", reconstructed.Services[0].Name)

	// Re-lowering the reconstructed AST must produce equivalent JSON.
	again, err := json.Marshal(Full(reconstructed))
	require.NoError(t, err)
	assert.JSONEq(t, string(data), string(again))
}

func TestSimpleLoweringFlattensAttributes(t *testing.T) {
	sys := mustParse(t, "system {\n  type: microservices\n  service s { langs: [go] }\n}")
	simple := Simple(sys, Options{})
	typeVal, ok := simple.Get("type")
	require.True(t, ok)
	assert.Equal(t, "microservices", typeVal)

	servicesVal, ok := simple.Get("services")
	require.True(t, ok)
	services := servicesVal.([]interface{})
	require.Len(t, services, 1)
	svcName, ok := services[0].(*OrderedMap).Get("name")
	require.True(t, ok)
	assert.Equal(t, "s", svcName)
}

func TestSimpleLoweringPreservesSourceKeyOrder(t *testing.T) {
	sys := mustParse(t, "system {\n  b: 1\n  a: 2\n}")
	simple := Simple(sys, Options{})
	// "services" is appended after the source attributes, so the first
	// two keys must be the attributes in declaration order.
	assert.Equal(t, []string{"b", "a", "services"}, simple.Keys())

	data, err := json.Marshal(simple)
	require.NoError(t, err)
	assert.Equal(t, `{"b":"1","a":"2","services":[]}`, string(data))
}

func TestMaxSimpleCompressesMethodsAndEndpoints(t *testing.T) {
	sys := mustParse(t, `system { service s {
		methods: [ +GetUser(uuid string) -> User ]
		endpoints: [ GET /api/users/{id} -> JSON{name: str} ]
	} }`)
	simple := Simple(sys, Options{MaxSimple: true})
	servicesVal, _ := simple.Get("services")
	services := servicesVal.([]interface{})
	svc := services[0].(*OrderedMap)

	methodsVal, ok := svc.Get("methods")
	require.True(t, ok)
	methods := methodsVal.([]interface{})
	require.Len(t, methods, 1)
	assert.Equal(t, "+GetUser(uuid string) -> User", methods[0])

	endpointsVal, ok := svc.Get("endpoints")
	require.True(t, ok)
	endpoints := endpointsVal.([]interface{})
	require.Len(t, endpoints, 1)
	assert.Equal(t, "GET /api/users/{id} -> JSON{name: str}", endpoints[0])
}

func TestMaxSimpleKeepsDefAlongsideAttributes(t *testing.T) {
	sys := mustParse(t, `system { service s {
		methods: [ +GetUser(uuid string) -> User { description: x } ]
	} }`)
	simple := Simple(sys, Options{MaxSimple: true})
	servicesVal, _ := simple.Get("services")
	services := servicesVal.([]interface{})
	svc := services[0].(*OrderedMap)

	methodsVal, _ := svc.Get("methods")
	methods := methodsVal.([]interface{})
	m := methods[0].(*OrderedMap)
	def, ok := m.Get("def")
	require.True(t, ok)
	assert.Equal(t, "+GetUser(uuid string) -> User", def)
	_, hasAttrs := m.Get("attributes")
	assert.True(t, hasAttrs)
}
