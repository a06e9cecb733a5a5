// Package server provides the sprite preview server: a gallery page over
// the generated files that reloads itself when the sprites change.
package server

import (
	"bytes"
	"fmt"
)

// liveReloadPath is the WebSocket endpoint gallery pages connect to.
const liveReloadPath = "/__skyforge/ws"

// reloadMessage is broadcast to clients after a rebuild.
var reloadMessage = []byte("reload")

// liveReloadScript reconnects to the server after it restarts and reloads
// the page on a reload message.
var liveReloadScript = fmt.Sprintf(`<script>
(function() {
  var url = "ws://" + location.host + "%s";
  function connect() {
    var ws = new WebSocket(url);
    ws.onmessage = function(e) {
      if (e.data === "%s") {
        location.reload();
      }
    };
    ws.onclose = function() {
      setTimeout(connect, 1000);
    };
  }
  connect();
})();
</script>`, liveReloadPath, reloadMessage)

// InjectLiveReload inserts the live reload script into the HTML document,
// immediately before </body> if present and at the end otherwise.
func InjectLiveReload(html []byte) []byte {
	script := []byte(liveReloadScript)

	idx := bytes.LastIndex(html, []byte("</body>"))
	if idx == -1 {
		return append(html, script...)
	}

	result := make([]byte, 0, len(html)+len(script))
	result = append(result, html[:idx]...)
	result = append(result, script...)
	result = append(result, html[idx:]...)
	return result
}
