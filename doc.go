// Package html2png renders static HTML documents to fixed-size PNG images
// using headless Chrome.
//
// # Quick Start
//
// Enumerate a directory, render it, and inspect the summary:
//
//	jobs, err := html2png.Enumerate("cards/_html", "cards")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	r, err := html2png.NewRenderer()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	sum, err := r.Run(ctx, jobs)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("%d/%d succeeded\n", sum.Succeeded(), sum.Total())
//
// # Render Pipeline
//
// A run launches one browser session and processes jobs strictly in order.
// For each job it:
//
//  1. Opens a fresh page with the viewport sized to the capture region
//  2. Loads the document as a file:// URL and waits for the load event and
//     for network quiescence (WithSettle)
//  3. Captures the region anchored at (0,0) at device scale factor 1
//  4. Writes the PNG to a temp file next to the output and renames it in place
//  5. Closes the page
//
// Load and capture share one deadline (WithTimeout). A failing job is
// recorded in the Summary and the batch continues. The browser and its
// process tree are torn down before Run returns.
//
// # Job Sources
//
// Enumerate lists *.html and *.htm files directly inside a directory and
// orders them by CompareNames, so numbered names render in sequence:
//
//	01_cover.html -> 01_cover.png
//	02_point.html -> 02_point.png
//
// LoadManifest reads explicit source/output pairs from YAML or JSON and
// keeps the manifest's order:
//
//	jobs:
//	  - source: _html/01_cover.html
//	    output: 01_cover.png
//
// # Configuration
//
// Use functional options to customize the renderer:
//
//	r, err := html2png.NewRenderer(
//	    html2png.WithRegion(html2png.Region{Width: 1200, Height: 628}),
//	    html2png.WithTimeout(time.Minute),
//	    html2png.WithEngine(html2png.NewChromedpEngine()),
//	    html2png.WithLogger(slog.Default()),
//	    html2png.WithProgress(func(done, total int, o html2png.Outcome) {
//	        fmt.Printf("[%d/%d] %s\n", done, total, filepath.Base(o.Job.Source))
//	    }),
//	)
//
// # Engines
//
// Two engines ship with the package: "rod" (go-rod, the default) and
// "chromedp". Both honor ROD_BROWSER_BIN and ROD_NO_SANDBOX. Any type
// implementing Engine can be passed to WithEngine.
//
// # Error Handling
//
// Job failures are classified by sentinel errors and ErrorKind:
//
//	for _, o := range sum.Failures() {
//	    switch {
//	    case errors.Is(o.Err, html2png.ErrLoadTimeout):
//	        // document never settled
//	    case errors.Is(o.Err, html2png.ErrLoad):
//	        // missing file or navigation failure
//	    }
//	}
package html2png
