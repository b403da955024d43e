package apihttp

// panelTemplate is the diagnostic panel shown by /chart when the dataset
// failed to load.
const panelTemplate = `{{define "panel"}}<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Caption}}</title>
<style>
body { font-family: system-ui, sans-serif; background: #111827; color: #e5e7eb; margin: 0; }
.panel { max-width: 40rem; margin: 4rem auto; padding: 1.5rem 2rem; border: 1px solid #b91c1c; border-radius: 8px; background: #1f2937; }
h1 { font-size: 1.25rem; color: #fca5a5; margin-top: 0; }
pre { white-space: pre-wrap; word-break: break-word; background: #111827; padding: 0.75rem; border-radius: 4px; }
</style>
</head>
<body>
<div class="panel">
<h1>{{.Caption}}</h1>
<p>Source: <code>{{.Source}}</code></p>
<pre>{{.Detail}}</pre>
</div>
</body>
</html>{{end}}`
