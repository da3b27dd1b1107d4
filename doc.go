// Package jlserve turns one Go type with schema-typed methods into a
// deployable HTTP inference service.
//
// An author declares exactly one app per process, attaches endpoints to
// it, and hands the process to Serve. Validation runs before anything
// listens: lifecycle hooks, endpoint schemas and route paths are all
// checked in one pass, and a single violation keeps the server down.
//
//	type Greeter struct{ prefix string }
//
//	func (g *Greeter) DownloadWeights() error { return nil }
//	func (g *Greeter) Setup() error           { g.prefix = "Hello"; return nil }
//
//	func (g *Greeter) Greet(ctx context.Context, in Input) (Output, error) {
//		return Output{Message: g.prefix + ", " + in.Name + "!"}, nil
//	}
//
//	func main() {
//		jlserve.MustApp[Greeter]()
//		jlserve.MustEndpoint("greet", (*Greeter).Greet)
//		jlserve.Serve()
//	}
package jlserve
