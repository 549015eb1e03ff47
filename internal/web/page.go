package web

import (
	"html/template"
	"time"

	"github.com/smysle/fbdl-go/internal/service"
	"github.com/smysle/fbdl-go/pkg/utils"
)

type pageData struct {
	AppName string
	Items   []service.HistoryItem
	Notices []service.Notice
	Now     time.Time
}

var pageFuncs = template.FuncMap{
	"ago": func(t, now time.Time) string {
		return utils.TimeAgo(t, now)
	},
}

var indexTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.AppName}}</title>
<style>
:root { --bg: #0f1422; --card: #1b2235; --text: #e6e9f0; --muted: #9aa3b5; --accent: #1877f2; --ok: #42b72a; --bad: #e4405f; }
body { background: var(--bg); color: var(--text); font-family: system-ui, sans-serif; margin: 0; }
main { max-width: 760px; margin: 0 auto; padding: 2rem 1rem; }
h1 { color: var(--accent); margin: 0 0 .5rem; }
.card { background: var(--card); border-radius: 12px; padding: 1.25rem; margin: 1rem 0; }
input { width: 100%; padding: 10px; margin: 6px 0; border: 1px solid #333a50; border-radius: 6px; background: #11182a; color: #fff; box-sizing: border-box; }
button { padding: 10px 14px; border: none; border-radius: 6px; background: var(--accent); color: #fff; font-weight: 600; cursor: pointer; }
button.secondary { background: #333a50; }
button.danger { background: var(--bad); }
button:disabled { opacity: .5; cursor: not-allowed; }
.row { display: flex; gap: .5rem; align-items: center; }
.item { display: flex; gap: 1rem; padding: .75rem 0; border-top: 1px solid #2a3147; }
.item img, #result img { width: 120px; height: 68px; object-fit: cover; border-radius: 6px; }
.muted { color: var(--muted); font-size: .85rem; }
.error { color: var(--bad); }
#toasts { position: fixed; right: 1rem; bottom: 1rem; width: 320px; }
.toast { background: var(--card); border-left: 4px solid var(--ok); padding: .75rem; margin-top: .5rem; border-radius: 6px; }
.toast.destructive { border-color: var(--bad); }
</style>
</head>
<body>
<main>
<h1>{{.AppName}}</h1>
<p class="muted">Paste a Facebook video link to get SD and HD download links.</p>

<section class="card">
  <form id="single" class="row">
    <input id="url" type="text" placeholder="https://www.facebook.com/watch/?v=..." autocomplete="off">
    <button id="go" type="submit">Download</button>
  </form>
  <div id="result"></div>
</section>

<section class="card">
  <h3>Batch download</h3>
  <div id="inputs"><input class="batch" type="text" placeholder="Facebook video URL"></div>
  <div class="row">
    <button class="secondary" id="add" type="button">+ Add URL</button>
    <button id="batchGo" type="button">Download all</button>
  </div>
</section>

<section class="card">
  <div class="row" style="justify-content: space-between">
    <h3>Recent downloads</h3>
    <button class="danger" id="clear" type="button">Clear</button>
  </div>
  <div id="recent">
  {{- range .Items}}
    <div class="item">
      <img src="{{.Thumbnail}}" alt="">
      <div>
        <div>{{.Title}}</div>
        <div class="muted">{{.Source}} · {{ago .DownloadedAt $.Now}}</div>
        {{- if .Low}}<button class="secondary" data-url="{{.Low}}" data-name="{{.LowFilename}}">SD</button>{{end}}
        {{- if .High}} <button data-url="{{.High}}" data-name="{{.HighFilename}}">HD</button>{{end}}
      </div>
    </div>
  {{- else}}
    <p class="muted">No downloads yet.</p>
  {{- end}}
  </div>
</section>
</main>
<div id="toasts">
{{- range .Notices}}<div class="toast {{.Variant}}"><b>{{.Title}}</b><div>{{.Description}}</div></div>{{end}}
</div>
<script>
const $ = (id) => document.getElementById(id);
const esc = (s) => String(s == null ? '' : s).replace(/[&<>"']/g, (c) => ({'&':'&amp;','<':'&lt;','>':'&gt;','"':'&quot;',"'":'&#39;'}[c]));

function toast(list) {
  (list || []).forEach((n) => {
    const el = document.createElement('div');
    el.className = 'toast ' + n.variant;
    el.innerHTML = '<b>' + esc(n.title) + '</b><div>' + esc(n.description) + '</div>';
    $('toasts').appendChild(el);
    setTimeout(() => el.remove(), 5000);
  });
}

async function api(method, path, body) {
  const resp = await fetch(path, {
    method: method,
    headers: {'Content-Type': 'application/json'},
    credentials: 'same-origin',
    body: body ? JSON.stringify(body) : undefined,
  });
  return resp.json();
}

function qualityButtons(low, high, lowName, highName) {
  let html = '';
  if (low) html += '<button class="secondary" data-url="' + esc(low) + '" data-name="' + esc(lowName) + '">SD</button> ';
  if (high) html += '<button data-url="' + esc(high) + '" data-name="' + esc(highName) + '">HD</button>';
  return html;
}

function renderRecent(items) {
  if (!items || !items.length) {
    $('recent').innerHTML = '<p class="muted">No downloads yet.</p>';
    return;
  }
  $('recent').innerHTML = items.map((it) =>
    '<div class="item"><img src="' + esc(it.thumbnail) + '" alt=""><div><div>' + esc(it.title) +
    '</div><div class="muted">' + esc(it.source) + '</div>' +
    qualityButtons(it.low, it.high, it.low_filename, it.high_filename) + '</div></div>').join('');
}

$('single').onsubmit = async (e) => {
  e.preventDefault();
  $('go').disabled = true;
  $('result').innerHTML = '<p class="muted">Processing...</p>';
  try {
    const out = await api('POST', '/api/v1/resolve', {url: $('url').value});
    if (out.stale) return;
    toast(out.notices);
    if (out.result) {
      const r = out.result;
      $('result').innerHTML = '<div class="item"><img src="' + esc(r.thumbnail) + '" alt=""><div><div>' + esc(r.title) +
        '</div>' + qualityButtons(r.low, r.high, r.low_filename, r.high_filename) + '</div></div>';
    } else {
      let html = '<p class="error">' + esc(out.error) + '</p>';
      if (out.support_url) html += '<a href="' + esc(out.support_url) + '" target="_blank" rel="noopener">Contact support</a>';
      $('result').innerHTML = html;
    }
    renderRecent(out.recent);
  } finally {
    $('go').disabled = false;
  }
};

$('add').onclick = () => {
  const el = document.createElement('input');
  el.className = 'batch';
  el.placeholder = 'Facebook video URL';
  $('inputs').appendChild(el);
};

$('batchGo').onclick = async () => {
  $('batchGo').disabled = true;
  try {
    const urls = Array.from(document.querySelectorAll('.batch')).map((el) => el.value);
    const out = await api('POST', '/api/v1/batch', {urls: urls});
    toast(out.notices);
    if (out.total > 0) {
      $('inputs').innerHTML = '<input class="batch" type="text" placeholder="Facebook video URL">';
    }
    renderRecent(out.recent);
  } finally {
    $('batchGo').disabled = false;
  }
};

$('clear').onclick = async () => {
  const out = await api('DELETE', '/api/v1/history');
  toast(out.notices);
  renderRecent(out.items);
};

document.addEventListener('click', async (e) => {
  const btn = e.target.closest('button[data-url]');
  if (!btn) return;
  const out = await api('POST', '/api/v1/trigger', {url: btn.dataset.url, filename: btn.dataset.name});
  toast(out.notices);
  if (!out.action) return;
  const a = document.createElement('a');
  a.href = out.action.url;
  a.download = out.action.filename;
  a.target = out.action.target;
  document.body.appendChild(a);
  a.click();
  a.remove();
});
</script>
</body>
</html>
`
