package web

// indexHTML is the single-page interface. It posts form values to /analyze
// and renders the returned statistics, chart, and result table in place.
const indexHTML = `<!DOCTYPE html>
<html>
<head>
    <title>PC Misprediction Analyzer</title>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1">
    <link href="https://cdn.jsdelivr.net/npm/bootstrap@5.1.3/dist/css/bootstrap.min.css" rel="stylesheet">
    <style>
        body { padding: 20px; background-color: #f8f9fa; }
        .container { max-width: 1600px; }
        .card { margin-bottom: 20px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        .chart-container { background: white; padding: 15px; border-radius: 5px; margin-bottom: 20px; }
        .stat-card { text-align: center; padding: 15px; border-radius: 5px; margin-bottom: 10px; }
        .stat-value { font-size: 1.8rem; font-weight: bold; }
        .stat-label { color: #6c757d; font-size: 0.9rem; }
        #loading { display: none; text-align: center; padding: 20px; }
        .chart-img { max-width: 100%; height: auto; }
        table { font-size: 0.9rem; }
        .table-container { max-height: 500px; overflow-y: auto; position: relative; }
        .sticky-header th {
            position: sticky;
            top: 0;
            background-color: #343a40;
            color: white;
            z-index: 100;
        }
    </style>
</head>
<body>
    <div class="container">
        <h1 class="mb-4">TAGE Trace Analyzer</h1>

        <div class="card">
            <div class="card-header bg-primary text-white">
                <h5 class="mb-0">Analysis Settings</h5>
            </div>
            <div class="card-body">
                <form id="analysisForm" class="row g-3">
                    <div class="col-md-3">
                        <label for="topN" class="form-label">Top N PCs</label>
                        <input type="number" class="form-control" id="topN" value="20" min="1" max="100">
                    </div>
                    <div class="col-md-3">
                        <label for="minBranches" class="form-label">Minimum Branches</label>
                        <input type="number" class="form-control" id="minBranches" value="10" min="1">
                    </div>
                    <div class="col-md-3">
                        <label for="tickStart" class="form-label">Tick Start (Optional)</label>
                        <input type="number" class="form-control" id="tickStart" placeholder="Start tick">
                    </div>
                    <div class="col-md-3">
                        <label for="tickEnd" class="form-label">Tick End (Optional)</label>
                        <input type="number" class="form-control" id="tickEnd" placeholder="End tick">
                    </div>
                    <div class="col-12">
                        <button type="submit" class="btn btn-primary">Analyze</button>
                        <button type="button" id="exportCsv" class="btn btn-success">Export CSV</button>
                        <button type="button" id="exportChart" class="btn btn-info">Export PNG</button>
                        <div id="loading" class="mt-3">
                            <div class="spinner-border text-primary" role="status">
                                <span class="visually-hidden">Loading...</span>
                            </div>
                            <span class="ms-2">Analyzing data...</span>
                        </div>
                    </div>
                </form>
            </div>
        </div>

        <div class="row mt-4" id="statsRow" style="display: none;">
            <div class="col-md-3">
                <div class="stat-card bg-light">
                    <div class="stat-value text-primary" id="totalPCs">0</div>
                    <div class="stat-label">PCs Analyzed</div>
                </div>
            </div>
            <div class="col-md-3">
                <div class="stat-card bg-light">
                    <div class="stat-value text-success" id="totalBranches">0</div>
                    <div class="stat-label">Total Branches</div>
                </div>
            </div>
            <div class="col-md-3">
                <div class="stat-card bg-light">
                    <div class="stat-value text-danger" id="totalMispred">0</div>
                    <div class="stat-label">Mispredictions</div>
                </div>
            </div>
            <div class="col-md-3">
                <div class="stat-card bg-light">
                    <div class="stat-value text-warning" id="avgRate">0%</div>
                    <div class="stat-label">Avg Mispred Rate</div>
                </div>
            </div>
        </div>

        <div class="chart-container mt-4" id="chartContainer" style="display: none;">
            <h5>Analysis Charts</h5>
            <div id="charts">
                <img id="chartImage" class="chart-img" src="" alt="Analysis Chart">
            </div>
        </div>

        <div class="card mt-4" id="resultsTable" style="display: none;">
            <div class="card-header bg-secondary text-white">
                <h5 class="mb-0">Detailed Results</h5>
            </div>
            <div class="card-body p-0">
                <div class="table-container">
                    <table class="table table-striped table-hover mb-0">
                        <thead class="table-dark sticky-header">
                            <tr>
                                <th>Rank</th>
                                <th>PC</th>
                                <th>Start PC</th>
                                <th>Count</th>
                                <th>Mispred Count</th>
                                <th>Mispred Rate</th>
                            </tr>
                        </thead>
                        <tbody id="resultsBody"></tbody>
                    </table>
                </div>
            </div>
        </div>
    </div>

    <script>
        document.getElementById('analysisForm').addEventListener('submit', function(e) {
            e.preventDefault();
            analyze();
        });
        document.getElementById('exportCsv').addEventListener('click', exportCsv);
        document.getElementById('exportChart').addEventListener('click', exportChart);

        function showLoading(show) {
            document.getElementById('loading').style.display = show ? 'block' : 'none';
        }

        function formParams() {
            return {
                top_n: document.getElementById('topN').value,
                min_branches: document.getElementById('minBranches').value,
                tick_start: document.getElementById('tickStart').value || '',
                tick_end: document.getElementById('tickEnd').value || ''
            };
        }

        function analyze() {
            showLoading(true);
            fetch('/analyze', {
                method: 'POST',
                headers: { 'Content-Type': 'application/json' },
                body: JSON.stringify(formParams())
            })
            .then(response => {
                if (!response.ok) {
                    throw new Error('Network response was not ok');
                }
                return response.json();
            })
            .then(data => {
                showLoading(false);
                if (data.error) {
                    alert('Error: ' + data.error);
                    return;
                }

                document.getElementById('statsRow').style.display = 'flex';
                document.getElementById('totalPCs').textContent = data.stats.total_pcs;
                document.getElementById('totalBranches').textContent = data.stats.total_count.toLocaleString();
                document.getElementById('totalMispred').textContent = data.stats.total_mispred.toLocaleString();
                document.getElementById('avgRate').textContent = data.stats.avg_rate.toFixed(2) + '%';

                document.getElementById('chartContainer').style.display = 'block';
                if (data.chart_image) {
                    document.getElementById('chartImage').src = data.chart_image;
                    document.getElementById('chartImage').style.display = 'block';
                } else {
                    document.getElementById('chartImage').style.display = 'none';
                }

                document.getElementById('resultsTable').style.display = 'block';
                const tbody = document.getElementById('resultsBody');
                tbody.innerHTML = '';
                data.results.forEach(item => {
                    const row = document.createElement('tr');
                    row.innerHTML =
                        '<td>' + item.rank + '</td>' +
                        '<td><code>' + item.pc + '</code></td>' +
                        '<td><code>' + item.startPc + '</code></td>' +
                        '<td>' + item.total.toLocaleString() + '</td>' +
                        '<td>' + item.mispred.toLocaleString() + '</td>' +
                        '<td>' + item.rate.toFixed(2) + '%</td>';
                    tbody.appendChild(row);
                });
            })
            .catch(error => {
                showLoading(false);
                alert('Analysis failed: ' + error.message);
            });
        }

        function exportCsv() {
            window.location.href = '/export/csv?' + new URLSearchParams(formParams());
        }

        function exportChart() {
            window.location.href = '/export/chart?' + new URLSearchParams(formParams());
        }

        window.addEventListener('DOMContentLoaded', analyze);
    </script>
</body>
</html>
`
