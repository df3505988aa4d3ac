package token

type ReadStream interface {
	Next() Token
}

type WriteStream interface {
	Put(Token)
}

type AccumulatorStream struct {
	toks []Token
}

var _ WriteStream = &AccumulatorStream{}

func NewAccumulatorStream() *AccumulatorStream {
	return &AccumulatorStream{}
}

func (w *AccumulatorStream) Put(tok Token) {
	w.toks = append(w.toks, tok)
}

func (w *AccumulatorStream) GetTokens() []Token {
	return w.toks
}

// Copy moves all the tokens of r into w, returning how many were copied.  A
// WriteStream reports failures by panicking, so Copy does too.
func Copy(w WriteStream, r ReadStream) int {
	n := 0
	for tok := r.Next(); tok != nil; tok = r.Next() {
		w.Put(tok)
		n++
	}
	return n
}

// Tokens drains r and returns its tokens.
func Tokens(r ReadStream) []Token {
	acc := NewAccumulatorStream()
	Copy(acc, r)
	return acc.GetTokens()
}
