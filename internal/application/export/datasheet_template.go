package export

// datasheetTemplate is the built-in product datasheet layout. It is
// self-contained (inline CSS, no external assets) so the same HTML prints
// identically through headless Chrome and in a browser.
const datasheetTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<title>{{.Product.Name}} - Datasheet</title>
<style>
  body { font-family: "Helvetica Neue", Arial, sans-serif; color: #1f2430; margin: 0; font-size: 12px; }
  .sheet { padding: 8px 4px; }
  .header { border-bottom: 3px solid #2f54eb; padding-bottom: 12px; margin-bottom: 18px; }
  .header h1 { margin: 0 0 4px 0; font-size: 22px; }
  .sku { color: #5b6372; font-size: 13px; letter-spacing: 0.5px; }
  .badge { display: inline-block; padding: 2px 10px; border-radius: 10px; font-size: 11px; font-weight: 600; }
  .badge.published { background: #e6f7e9; color: #237d36; }
  .badge.draft { background: #f0f2f5; color: #5b6372; }
  .badge.archived { background: #fff1f0; color: #a8071a; }
  .section { margin-bottom: 16px; }
  .section h2 { font-size: 13px; text-transform: uppercase; letter-spacing: 1px; color: #2f54eb; border-bottom: 1px solid #e4e7ed; padding-bottom: 4px; margin: 0 0 8px 0; }
  table.facts { width: 100%; border-collapse: collapse; }
  table.facts td { padding: 4px 8px 4px 0; vertical-align: top; }
  table.facts td.key { color: #5b6372; width: 160px; white-space: nowrap; }
  .price { font-size: 18px; font-weight: 700; }
  .tags span { display: inline-block; background: #f0f2f5; border-radius: 4px; padding: 2px 8px; margin: 0 4px 4px 0; }
  .images { display: flex; flex-wrap: wrap; gap: 8px; }
  .images figure { margin: 0; width: 150px; }
  .images img { width: 150px; height: 110px; object-fit: cover; border: 1px solid #e4e7ed; border-radius: 4px; }
  .images figcaption { font-size: 10px; color: #5b6372; overflow: hidden; text-overflow: ellipsis; white-space: nowrap; }
  .footer { margin-top: 24px; border-top: 1px solid #e4e7ed; padding-top: 8px; font-size: 10px; color: #8a919f; }
</style>
</head>
<body>
<div class="sheet">
  <div class="header">
    <h1>{{.Product.Name}}</h1>
    <span class="sku">SKU {{.Product.SKU}}</span>
    <span class="badge {{.Product.StatusClass}}">{{.Product.Status}}</span>
  </div>

  {{if .Product.Description}}
  <div class="section">
    <h2>Description</h2>
    <p>{{.Product.Description}}</p>
  </div>
  {{end}}

  <div class="section">
    <h2>Commercial</h2>
    <table class="facts">
      <tr><td class="key">Price</td><td class="price">{{.Product.Price}} {{.Product.Currency}}</td></tr>
      <tr><td class="key">Stock on hand</td><td>{{.Product.StockQuantity}} units</td></tr>
      {{if .Product.Tags}}
      <tr><td class="key">Tags</td><td class="tags">{{range .Product.Tags}}<span>{{.}}</span>{{end}}</td></tr>
      {{end}}
    </table>
  </div>

  {{if .Manufacturer}}
  <div class="section">
    <h2>Manufacturer</h2>
    <table class="facts">
      <tr><td class="key">Name</td><td>{{.Manufacturer.Name}}</td></tr>
      {{if .Manufacturer.Country}}<tr><td class="key">Country</td><td>{{.Manufacturer.Country}}</td></tr>{{end}}
      {{if .Manufacturer.Website}}<tr><td class="key">Website</td><td>{{.Manufacturer.Website}}</td></tr>{{end}}
      {{if .Manufacturer.ContactEmail}}<tr><td class="key">Contact</td><td>{{.Manufacturer.ContactEmail}}</td></tr>{{end}}
    </table>
  </div>
  {{end}}

  {{if .Images}}
  <div class="section">
    <h2>Images</h2>
    <div class="images">
      {{range .Images}}
      <figure>
        {{if .URL}}<img src="{{.URL}}" alt="{{.FileName}}">{{end}}
        <figcaption>{{.FileName}}</figcaption>
      </figure>
      {{end}}
    </div>
  </div>
  {{end}}

  <div class="footer">Generated {{.GeneratedAt}}</div>
</div>
</body>
</html>`
