package web

import (
	"html/template"
	"net/http"
)

var panelTmpl = template.Must(template.New("panel").Parse(panelHTML))

func panelHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_ = panelTmpl.Execute(w, nil)
	}
}

const panelHTML = `<!DOCTYPE html>
<html>
<head>
    <title>Admin Panel - Activation Codes</title>
    <style>
        body { font-family: 'Segoe UI', Tahoma, sans-serif; max-width: 1000px; margin: 0 auto; padding: 20px; background: #f5f5f5; }
        .container { background: white; padding: 30px; border-radius: 10px; box-shadow: 0 2px 10px rgba(0,0,0,0.1); }
        h1 { color: #333; border-bottom: 2px solid #4CAF50; padding-bottom: 10px; }
        .section { margin: 30px 0; padding: 20px; background: #f9f9f9; border-radius: 8px; }
        input, select, button { padding: 12px; margin: 8px 0; border: 1px solid #ddd; border-radius: 5px; font-size: 16px; }
        input { width: 300px; }
        select { width: 150px; }
        button { background: #4CAF50; color: white; border: none; cursor: pointer; padding: 12px 24px; font-weight: bold; }
        button:hover { background: #45a049; }
        .result { padding: 15px; margin: 15px 0; border-radius: 5px; display: none; }
        .success { background: #d4edda; color: #155724; border: 1px solid #c3e6cb; }
        .error { background: #f8d7da; color: #721c24; border: 1px solid #f5c6cb; }
        .code-list { background: white; padding: 15px; border-radius: 5px; max-height: 400px; overflow-y: auto; }
        .code-item { padding: 10px; margin: 5px 0; border-left: 4px solid #4CAF50; background: #f9f9f9; }
        .used { border-left-color: #dc3545; opacity: 0.7; }
    </style>
</head>
<body>
    <div class="container">
        <h1>Activation Codes</h1>

        <div class="section">
            <h2>Add a new code</h2>
            <input type="text" id="newCode" placeholder="Code value (leave empty to generate)">
            <select id="codeType">
                <option value="forever">Forever</option>
                <option value="month">Month</option>
                <option value="week">Week</option>
                <option value="day">Day</option>
            </select>
            <button onclick="addCode()">Add code</button>
            <div id="addResult" class="result"></div>
        </div>

        <div class="section">
            <h2>All codes</h2>
            <button onclick="loadCodes()">Refresh</button>
            <div id="codesList" class="code-list"></div>
        </div>

        <div class="section">
            <h2>Stats</h2>
            <div id="stats">
                <p>Total codes: <span id="totalCodes">0</span></p>
                <p>Used: <span id="usedCodes">0</span></p>
                <p>Available: <span id="activeCodes">0</span></p>
                <p>Users: <span id="totalUsers">0</span></p>
            </div>
        </div>
    </div>

    <script>
        async function addCode() {
            const code = document.getElementById('newCode').value.trim();
            const type = document.getElementById('codeType').value;
            const resultDiv = document.getElementById('addResult');

            try {
                const response = await fetch('/api/admin/add_code', {
                    method: 'POST',
                    headers: {'Content-Type': 'application/json'},
                    body: JSON.stringify({code: code, code_type: type})
                });

                if (response.ok) {
                    const data = await response.json();
                    showResult(resultDiv, 'Added ' + data.code + ' (' + data.code_type + ')', 'success');
                    document.getElementById('newCode').value = '';
                    loadCodes();
                } else {
                    showResult(resultDiv, await response.text(), 'error');
                }
            } catch (error) {
                showResult(resultDiv, 'Failed to reach the server', 'error');
            }
        }

        async function loadCodes() {
            try {
                const response = await fetch('/api/admin/list_codes');
                const data = await response.json();
                if (data.status !== 'success') return;

                const codesList = document.getElementById('codesList');
                codesList.innerHTML = data.codes.map(code =>
                    '<div class="code-item ' + (code.used ? 'used' : '') + '">' +
                    '<strong>' + code.code + '</strong><br>' +
                    'Type: ' + code.type + ' | ' +
                    'Created: ' + new Date(code.created).toLocaleDateString() + ' | ' +
                    (code.expires ? 'Expires: ' + new Date(code.expires).toLocaleDateString() : 'Never expires') + ' | ' +
                    (code.used ? 'Used' : 'Available') +
                    '</div>'
                ).join('');

                const used = data.codes.filter(c => c.used).length;
                document.getElementById('totalCodes').textContent = data.codes.length;
                document.getElementById('usedCodes').textContent = used;
                document.getElementById('activeCodes').textContent = data.codes.length - used;
            } catch (error) {
                console.error('Failed to load codes:', error);
            }
        }

        async function loadUsers() {
            try {
                const response = await fetch('/api/admin/list_users');
                const data = await response.json();
                if (data.status === 'success') {
                    document.getElementById('totalUsers').textContent = data.total;
                }
            } catch (error) {
                console.error('Failed to load users:', error);
            }
        }

        function showResult(element, message, type) {
            element.textContent = message;
            element.className = 'result ' + type;
            element.style.display = 'block';
            setTimeout(() => { element.style.display = 'none'; }, 5000);
        }

        loadCodes();
        loadUsers();
    </script>
</body>
</html>
`
