package gorules

import "github.com/quasilyte/go-ruleguard/dsl"

func smells(m dsl.Matcher) {
	// if a { return err }; if b { return err }  =>  if a || b { return err }
	m.Match(`if $c1 { return $ret }; if $c2 { return $ret }`).
		Report(`two consecutive guards return the same value; consider merging conditions with ||`).
		Suggest(`if $c1 || $c2 { return $ret }`)

	m.Match(`if $c1 { continue }; if $c2 { continue }`).
		Report(`two consecutive continues; consider merging conditions with ||`).
		Suggest(`if $c1 || $c2 { continue }`)

	m.Match(`for $*_ { for $*_ { $*_ } }`).
		Report(`nested for-loop; consider extracting inner loop logic or reducing algorithmic complexity`)
}

// fetching covers outbound HTTP: every fetch needs a context deadline and a size cap.
func fetching(m dsl.Matcher) {
	m.Match(`http.Get($*_)`, `http.Head($*_)`, `http.Post($*_)`).
		Report(`package-level http helpers carry no context; build the request with http.NewRequestWithContext`)

	m.Match(`http.DefaultClient`).
		Report(`http.DefaultClient is shared process-wide; inject an *http.Client`)

	m.Match(`io.ReadAll($resp.Body)`).
		Where(m["resp"].Type.Is(`*http.Response`)).
		Report(`unbounded read of a response body; wrap it in io.LimitReader`)
}

// stdout belongs to the MCP stdio transport.
func stdout(m dsl.Matcher) {
	m.Match(`fmt.Println($*_)`, `fmt.Printf($*_)`, `fmt.Print($*_)`, `println($*_)`).
		Report(`writing to stdout corrupts the stdio transport; log with zerolog or write to cmd.OutOrStdout()`)

	m.Match(`log.Printf($*_)`, `log.Println($*_)`).
		Where(m.File().Imports(`log`)).
		Report(`use github.com/rs/zerolog/log instead of the standard logger`)
}
