package generators

import (
	"math/rand"

	"github.com/funvibe/tapevm/internal/ast"
)

// RandomSource abstracts the source of randomness.
type RandomSource interface {
	Intn(n int) int
	Int63() int64
}

// RandSource wraps math/rand.
type RandSource struct {
	*rand.Rand
}

// ByteSource uses a byte slice as a source of randomness.
type ByteSource struct {
	data []byte
	pos  int
}

func (s *ByteSource) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	if s.pos >= len(s.data) {
		return 0
	}
	v := int(s.data[s.pos])
	s.pos++
	return v % n
}

func (s *ByteSource) Int63() int64 {
	var v int64
	for i := 0; i < 8; i++ {
		v = v<<8 | int64(s.Intn(256))
	}
	return v & (1<<63 - 1)
}

// Generator generates random well-formed expressions. Every loop it builds
// is driven by a small counter binding that nothing else assigns, so every
// generated expression terminates.
type Generator struct {
	src   RandomSource
	depth int
	// scope holds one entry per binding, innermost last; true marks a loop
	// counter that must not be assigned.
	scope []bool
	loops int
	// MaxArgs is the number of arguments expressions may read.
	MaxArgs int
}

const (
	MaxDepth    = 6
	MaxSeqItems = 4
	MaxLoops    = 3
	MaxCounter  = 5
)

func New(seed int64) *Generator {
	return &Generator{
		src:     &RandSource{rand.New(rand.NewSource(seed))},
		MaxArgs: 3,
	}
}

func NewFromData(data []byte) *Generator {
	return &Generator{
		src:     &ByteSource{data: data},
		MaxArgs: 3,
	}
}

// Intn exposes the random source's Intn method for embedded structs.
func (g *Generator) Intn(n int) int {
	return g.src.Intn(n)
}

// Src returns the random source of the generator.
func (g *Generator) Src() RandomSource {
	return g.src
}

// GenerateExpr returns an expression that produces a value.
func (g *Generator) GenerateExpr() ast.Expr {
	g.depth = 0
	g.scope = g.scope[:0]
	g.loops = 0
	return g.value()
}

// GenerateArgs returns MaxArgs arguments, mostly small.
func (g *Generator) GenerateArgs() []int64 {
	args := make([]int64, g.MaxArgs)
	for i := range args {
		args[i] = g.literal()
	}
	return args
}

func (g *Generator) literal() int64 {
	switch g.src.Intn(10) {
	case 0:
		return g.src.Int63()
	case 1:
		return -g.src.Int63() - 1
	default:
		return int64(g.src.Intn(21) - 10)
	}
}

// value generates an expression that produces a value.
func (g *Generator) value() ast.Expr {
	g.depth++
	defer func() { g.depth-- }()

	if g.depth >= MaxDepth {
		return g.leaf()
	}

	switch g.src.Intn(8) {
	case 0, 1:
		return g.leaf()
	case 2, 3:
		return &ast.Add{Left: g.value(), Right: g.value()}
	case 4, 5:
		return g.bind(false, g.value)
	default:
		n := g.src.Intn(MaxSeqItems)
		items := make([]ast.Expr, 0, n+1)
		for i := 0; i < n; i++ {
			items = append(items, g.statement())
		}
		items = append(items, g.value())
		return ast.Seq(items[0], items[1:]...)
	}
}

// statement generates an expression whose value, if any, is discarded.
func (g *Generator) statement() ast.Expr {
	g.depth++
	defer func() { g.depth-- }()

	if g.depth >= MaxDepth {
		return g.leaf()
	}

	switch g.src.Intn(6) {
	case 0:
		if a := g.assign(); a != nil {
			return a
		}
		return g.leaf()
	case 1:
		if g.loops < MaxLoops {
			return g.loop()
		}
		return g.value()
	case 2:
		return g.bind(false, g.statement)
	default:
		return g.value()
	}
}

func (g *Generator) leaf() ast.Expr {
	switch g.src.Intn(3) {
	case 0:
		if g.MaxArgs > 0 {
			return &ast.Argument{Index: g.src.Intn(g.MaxArgs)}
		}
	case 1:
		if len(g.scope) > 0 {
			return &ast.LocalRef{Offset: g.src.Intn(len(g.scope))}
		}
	}
	return &ast.Literal{Value: g.literal()}
}

func (g *Generator) bind(counter bool, body func() ast.Expr) ast.Expr {
	init := g.value()
	g.scope = append(g.scope, counter)
	b := body()
	g.scope = g.scope[:len(g.scope)-1]
	return &ast.Bind{Init: init, Body: b}
}

// assign targets a random binding that is not a loop counter, or returns
// nil when there is none.
func (g *Generator) assign() ast.Expr {
	var offsets []int
	for i, counter := range g.scope {
		if !counter {
			offsets = append(offsets, len(g.scope)-1-i)
		}
	}
	if len(offsets) == 0 {
		return nil
	}
	return &ast.Assign{Offset: offsets[g.src.Intn(len(offsets))], Value: g.value()}
}

// loop builds
//
//	(bind (lit k) (loop (local 0) (seq body (assign 0 (add (local 0) (lit -1))))))
//
// where body cannot touch the counter.
func (g *Generator) loop() ast.Expr {
	g.loops++
	defer func() { g.loops-- }()

	k := int64(g.src.Intn(MaxCounter+2) - 1)
	g.scope = append(g.scope, true)
	body := g.statement()
	g.scope = g.scope[:len(g.scope)-1]

	// body was generated with the counter at offset 0; nested bindings
	// inside it have already been popped.
	step := &ast.Assign{Offset: 0, Value: &ast.Add{Left: &ast.LocalRef{Offset: 0}, Right: &ast.Literal{Value: -1}}}
	return &ast.Bind{
		Init: &ast.Literal{Value: k},
		Body: &ast.Loop{Cond: &ast.LocalRef{Offset: 0}, Body: ast.Seq(body, step)},
	}
}
