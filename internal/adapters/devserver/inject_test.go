package devserver_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/glaze/internal/adapters/devserver"
)

func TestInjectClient(t *testing.T) {
	const tag = `<script src="/__glaze/client.js"></script>`

	tests := []struct {
		name string
		doc  string
		want string
	}{
		{
			name: "before closing body",
			doc:  "<html><body><p>hi</p></body></html>\n",
			want: "<html><body><p>hi</p>" + tag + "</body></html>\n",
		},
		{
			name: "upper case tags",
			doc:  "<HTML><BODY>x</BODY></HTML>",
			want: "<HTML><BODY>x" + tag + "</BODY></HTML>",
		},
		{
			name: "body text inside script is ignored",
			doc:  "<body><script>var s = \"</body>\";</script></body>",
			want: "<body><script>var s = \"</body>\";</script>" + tag + "</body>",
		},
		{
			name: "no body falls back to html",
			doc:  "<html><p>x</p></html>",
			want: "<html><p>x</p>" + tag + "</html>",
		},
		{
			name: "fragment",
			doc:  "<p>x</p>",
			want: "<p>x</p>" + tag,
		},
		{
			name: "preserves formatting",
			doc:  "<!DOCTYPE html>\n<html>\n  <body class=\"a\"  >\n  </body>\n</html>\n",
			want: "<!DOCTYPE html>\n<html>\n  <body class=\"a\"  >\n  " + tag + "</body>\n</html>\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, string(devserver.InjectClient([]byte(tt.doc))))
		})
	}
}
