package web

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

func Home() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, _ = io.WriteString(w, `<!doctype html>
<html lang="en">
  <head>
    <meta charset="utf-8"/>
    <meta name="viewport" content="width=device-width, initial-scale=1"/>
    <title>Object Hunt</title>
  </head>
  <body>
    <main class="shell">
      <header class="hero">
        <span class="tag">Object Hunt</span>
        <h1>Grab it. Snap it. Score it.</h1>
        <p>Each round names a household object. Find it, photograph it, and let
        the room vote on your find. Fastest verified photo wins the most
        points.</p>
      </header>

      <section class="panel">
        <h2>How to play</h2>
        <ol>
          <li>Join a room with a code and a display name, then ready up.</li>
          <li>When the round starts, hunt down the object and submit a photo
          before the timer runs out.</li>
          <li>Vote yes or no on everyone else's photos.</li>
          <li>Photos with majority approval score points, with a bonus for
          submitting early.</li>
        </ol>
        <p>Game traffic runs over the websocket at <code>/ws</code>.</p>
      </section>
    </main>
  </body>
</html>
`)
		return nil
	})
}
