package lexer

import "testing"

const benchSource = `system {
  type: microservices
  service users {
    components: [
      database UserRepo { engine: postgres-12 }
    ]
    fields: [
      +ID: UUID
      -PasswordHash: string
    ]
    endpoints: [
      GET /api/users/{id} -> JSON{name: str, email: str} [auth:true]
    ]
  }
}
`

func BenchmarkScanTokens(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		New(benchSource).ScanTokens()
	}
}
