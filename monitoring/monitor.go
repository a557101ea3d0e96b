// Package monitoring turns a classifier run into a small web server so that
// the table state and the accumulated statistics can be inspected while a
// long synthetic trace is replayed.
package monitoring

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/pkg/browser"
	"github.com/syifan/goseth"

	"github.com/berkayinceisci/chipyard-stream-buffers/analysis"
	"github.com/berkayinceisci/chipyard-stream-buffers/streambuffer"
)

// Monitor exposes a classifier and its collector over HTTP.
type Monitor struct {
	classifier *streambuffer.Classifier
	collector  *analysis.Collector
	portNumber int
	openDoc    bool
}

// NewMonitor creates a new Monitor.
func NewMonitor() *Monitor {
	return &Monitor{}
}

// WithPortNumber sets the port number of the monitor.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber != 0 && portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is assigned to the monitoring server, "+
				"which is not allowed. Using a random port instead.\n",
			portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// WithBrowser makes StartServer open the stats page in the default browser.
func (m *Monitor) WithBrowser() *Monitor {
	m.openDoc = true
	return m
}

// RegisterClassifier registers the classifier to be monitored.
func (m *Monitor) RegisterClassifier(c *streambuffer.Classifier) {
	m.classifier = c
}

// RegisterCollector registers the statistics collector to be monitored.
func (m *Monitor) RegisterCollector(c *analysis.Collector) {
	m.collector = c
}

// StartServer starts the monitor as a web server, on the configured port or
// a random free one.
func (m *Monitor) StartServer() {
	r := mux.NewRouter()
	r.HandleFunc("/api/stats", m.stats)
	r.HandleFunc("/api/entries", m.entries)
	r.HandleFunc("/api/config", m.config)
	r.HandleFunc("/api/classifier", m.classifierState)
	http.Handle("/", r)

	actualPort := ":0"
	if m.portNumber >= 1000 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	dieOnErr(err)

	url := fmt.Sprintf("http://localhost:%d/api/stats",
		listener.Addr().(*net.TCPAddr).Port)
	fmt.Fprintf(os.Stderr, "Monitoring run with %s\n", url)

	if m.openDoc {
		_ = browser.OpenURL(url)
	}

	go func() {
		err = http.Serve(listener, nil)
		dieOnErr(err)
	}()
}

func (m *Monitor) stats(w http.ResponseWriter, _ *http.Request) {
	m.writeJSON(w, m.collector.Snapshot())
}

func (m *Monitor) entries(w http.ResponseWriter, _ *http.Request) {
	m.writeJSON(w, m.classifier.Entries())
}

func (m *Monitor) config(w http.ResponseWriter, _ *http.Request) {
	m.writeJSON(w, m.classifier.Config())
}

// classifierState serializes the whole classifier, private fields included,
// for debugging.
func (m *Monitor) classifierState(w http.ResponseWriter, _ *http.Request) {
	serializer := goseth.NewSerializer()
	serializer.SetRoot(m.classifier)
	serializer.SetMaxDepth(1)

	err := serializer.Serialize(w)
	dieOnErr(err)
}

func (m *Monitor) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")

	err := json.NewEncoder(w).Encode(v)
	dieOnErr(err)
}

func dieOnErr(err error) {
	if err != nil {
		panic(err)
	}
}
