package runtime

// luaDefinesRun reports whether a compiled chunk assigns the global run at
// its top level, either as "function run(" or "run = function". Definitions
// nested in a block, a function body or a table constructor do not count,
// and neither do comments or string literals. Blocks are opened by function,
// do, if and repeat and closed by end and until.
func luaDefinesRun(src []byte) bool {
	toks := luaTokens(src)
	blocks, nest := 0, 0
	for i, tok := range toks {
		prev := ""
		if i > 0 {
			prev = toks[i-1]
		}
		top := blocks == 0 && nest == 0
		switch tok {
		case "function":
			if top && prev != "local" && i+2 < len(toks) && toks[i+1] == "run" && toks[i+2] == "(" {
				return true
			}
			blocks++
		case "do", "if", "repeat":
			blocks++
		case "end", "until":
			blocks--
		case "(", "{", "[":
			nest++
		case ")", "}", "]":
			nest--
		case "run":
			if top && prev != "local" && prev != "." && prev != ":" && prev != "," &&
				i+2 < len(toks) && toks[i+1] == "=" && toks[i+2] == "function" {
				return true
			}
		}
	}
	return false
}

// luaTokens splits src into identifiers, keywords and punctuation. Comments,
// strings and numbers are dropped.
func luaTokens(src []byte) []string {
	var toks []string
	n := len(src)
	for i := 0; i < n; {
		c := src[i]
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == '\f' || c == '\v':
			i++
		case c == '-' && i+1 < n && src[i+1] == '-':
			i += 2
			if level, ok := longBracket(src, i); ok {
				i = skipLong(src, i, level)
				continue
			}
			for i < n && src[i] != '\n' {
				i++
			}
		case c == '[':
			if level, ok := longBracket(src, i); ok {
				i = skipLong(src, i, level)
				continue
			}
			toks = append(toks, "[")
			i++
		case c == '"' || c == '\'':
			i++
			for i < n && src[i] != c && src[i] != '\n' {
				if src[i] == '\\' {
					i++
				}
				i++
			}
			i++
		case isLuaIdentStart(c):
			j := i + 1
			for j < n && isLuaIdent(src[j]) {
				j++
			}
			toks = append(toks, string(src[i:j]))
			i = j
		case c >= '0' && c <= '9':
			for i < n && (isLuaIdent(src[i]) || src[i] == '.') {
				i++
			}
		case c == '=' || c == '~' || c == '<' || c == '>':
			if i+1 < n && src[i+1] == '=' {
				toks = append(toks, string(src[i:i+2]))
				i += 2
				continue
			}
			toks = append(toks, string(c))
			i++
		case c == '.':
			j := i
			for j < n && j-i < 3 && src[j] == '.' {
				j++
			}
			toks = append(toks, string(src[i:j]))
			i = j
		default:
			toks = append(toks, string(c))
			i++
		}
	}
	return toks
}

// longBracket reports whether a long bracket "[", zero or more "=", "[" starts
// at i, and returns its level.
func longBracket(src []byte, i int) (int, bool) {
	if i >= len(src) || src[i] != '[' {
		return 0, false
	}
	j := i + 1
	for j < len(src) && src[j] == '=' {
		j++
	}
	if j < len(src) && src[j] == '[' {
		return j - i - 1, true
	}
	return 0, false
}

// skipLong returns the index after the long bracket opened at i closes.
func skipLong(src []byte, i, level int) int {
	i += level + 2
	for ; i < len(src); i++ {
		if src[i] != ']' {
			continue
		}
		j := i + 1
		for j < len(src) && src[j] == '=' {
			j++
		}
		if j < len(src) && src[j] == ']' && j-i-1 == level {
			return j + 1
		}
	}
	return len(src)
}

func isLuaIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isLuaIdent(c byte) bool {
	return isLuaIdentStart(c) || (c >= '0' && c <= '9')
}
