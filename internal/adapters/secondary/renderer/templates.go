package renderer

const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Title}}</title>
    <link rel="stylesheet" href="{{.RevealURL}}/reveal.css">
    <link rel="stylesheet" href="{{.RevealURL}}/theme/{{.Theme}}.css">
    <style>
        html, body { margin: 0; height: 100%; }
        .page { height: 100%; margin: 0 auto; }
        .page.layout-centered { max-width: 736px; }
        .page.layout-wide { max-width: none; padding: 0 1rem; }
        .reveal pre code { white-space: pre; }
    </style>
</head>
<body>
    <main class="page layout-{{.Layout}}">
        <div class="reveal">
            <div class="slides">
{{.Slides}}
            </div>
        </div>
    </main>
    <script src="{{.RevealURL}}/reveal.js"></script>
    <script>
        Reveal.initialize({{.Options}});
    </script>
    {{- if .SyncURL}}
    <script>
        (function () {
            var proto = location.protocol === 'https:' ? 'wss://' : 'ws://';
            var socket = new WebSocket(proto + location.host + {{.SyncURL}});
            var applying = false;

            function goTo(pos) {
                if (!pos) { return; }
                if (!Reveal.isReady()) {
                    Reveal.on('ready', function () { goTo(pos); });
                    return;
                }
                applying = true;
                Reveal.slide(pos.indexh, pos.indexv);
                applying = false;
            }

            socket.onmessage = function (msg) {
                var event = JSON.parse(msg.data);
                if (!event.data) { return; }
                if (event.type === 'connected') {
                    goTo(event.data.position);
                } else if (event.type === 'navigate') {
                    goTo(event.data);
                }
            };

            Reveal.on('slidechanged', function (e) {
                if (applying || socket.readyState !== WebSocket.OPEN) { return; }
                socket.send(JSON.stringify({type: 'navigate', data: {indexh: e.indexh, indexv: e.indexv}}));
            });
        })();
    </script>
    {{- end}}
</body>
</html>`
