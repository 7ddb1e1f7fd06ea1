package parser

import "testing"

func TestLexer_TokenStream(t *testing.T) {
	tokens, err := newLexer(`let x = Resources.*`, "t.gcl").run()
	if err != nil {
		t.Fatalf("run() failed: %v", err)
	}

	want := []tokenType{tokenIdent, tokenIdent, tokenAssign, tokenIdent, tokenDot, tokenStar, tokenEOF}
	if len(tokens) != len(want) {
		t.Fatalf("len(tokens) = %d, want %d", len(tokens), len(want))
	}
	for i, typ := range want {
		if tokens[i].typ != typ {
			t.Errorf("tokens[%d].typ = %v, want %v", i, tokens[i].typ, typ)
		}
	}
}

func TestLexer_OperatorDisambiguation(t *testing.T) {
	tokens, err := newLexer(`== = != !`, "t.gcl").run()
	if err != nil {
		t.Fatalf("run() failed: %v", err)
	}

	want := []tokenType{tokenEq, tokenAssign, tokenNeq, tokenBang, tokenEOF}
	for i, typ := range want {
		if tokens[i].typ != typ {
			t.Errorf("tokens[%d].typ = %v, want %v", i, tokens[i].typ, typ)
		}
	}
}

func TestLexer_StringEscapes(t *testing.T) {
	tokens, err := newLexer(`"a\"b"`, "t.gcl").run()
	if err != nil {
		t.Fatalf("run() failed: %v", err)
	}
	if tokens[0].typ != tokenString || tokens[0].text != `a"b` {
		t.Errorf("token = %+v, want string a\"b", tokens[0])
	}
}

func TestLexer_Numbers(t *testing.T) {
	tests := []struct {
		input string
		text  string
	}{
		{"42", "42"},
		{"3.5", "3.5"},
		{"-7", "-7"},
	}
	for _, tt := range tests {
		tokens, err := newLexer(tt.input, "t.gcl").run()
		if err != nil {
			t.Fatalf("run(%q) failed: %v", tt.input, err)
		}
		if tokens[0].typ != tokenNumber || tokens[0].text != tt.text {
			t.Errorf("run(%q) token = %+v, want number %q", tt.input, tokens[0], tt.text)
		}
	}
}

func TestLexer_MultilineMessage(t *testing.T) {
	tokens, err := newLexer("<<line one\nline two>>", "t.gcl").run()
	if err != nil {
		t.Fatalf("run() failed: %v", err)
	}
	if tokens[0].typ != tokenMessage {
		t.Fatalf("token type = %v, want message", tokens[0].typ)
	}
	if tokens[0].text != "line one\nline two" {
		t.Errorf("message text = %q", tokens[0].text)
	}
}

func TestLexer_CommentsProduceNoTokens(t *testing.T) {
	tokens, err := newLexer("# just a comment", "t.gcl").run()
	if err != nil {
		t.Fatalf("run() failed: %v", err)
	}
	if len(tokens) != 1 || tokens[0].typ != tokenEOF {
		t.Errorf("tokens = %+v, want only EOF", tokens)
	}
}

func TestLexer_ErrorLocations(t *testing.T) {
	_, err := newLexer("Resources exists\n  @bad", "t.gcl").run()
	if err == nil {
		t.Fatal("run() succeeded, want error")
	}
	if err.Location.Line != 2 {
		t.Errorf("error line = %d, want 2", err.Location.Line)
	}
	if err.Location.Column != 3 {
		t.Errorf("error column = %d, want 3", err.Location.Column)
	}
}

func TestLexer_ColumnsCountRunes(t *testing.T) {
	// "héllo" spans 6 bytes but 5 runes; columns after it must count runes.
	tokens, err := newLexer(`x == "héllo" y`, "t.gcl").run()
	if err != nil {
		t.Fatalf("run() failed: %v", err)
	}
	// x(1) ==(3) string(6) y(14)
	if tokens[2].typ != tokenString || tokens[2].column != 6 {
		t.Errorf("string token = %+v, want column 6", tokens[2])
	}
	if tokens[3].typ != tokenIdent || tokens[3].column != 14 {
		t.Errorf("ident token = %+v, want column 14", tokens[3])
	}

	_, lexErr := newLexer(`x == "héllo" @`, "t.gcl").run()
	if lexErr == nil {
		t.Fatal("run() succeeded, want error")
	}
	if lexErr.Location.Column != 14 {
		t.Errorf("error column = %d, want 14", lexErr.Location.Column)
	}
}
