// ABOUTME: One-way converter from the legacy XML settings file to conffile.
// ABOUTME: Tolerant of unnamed nodes; document order is preserved.

package transcode

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/2389/bondstore/internal/conffile"
)

// The legacy document is a flat two-level tree:
//
//	<settings>
//	  <section name="Adapter">
//	    <entry name="Address">01:23:45:67:89:ab</entry>
//	  </section>
//	</settings>
type xmlSettings struct {
	XMLName  xml.Name     `xml:"settings"`
	Sections []xmlSection `xml:"section"`
}

type xmlSection struct {
	Name    string     `xml:"name,attr"`
	Entries []xmlEntry `xml:"entry"`
}

type xmlEntry struct {
	Name  string `xml:"name,attr"`
	Value string `xml:",chardata"`
}

// Load reads the legacy XML file at path and converts it.
func Load(path string) (*conffile.File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening legacy settings: %w", err)
	}
	defer fh.Close()

	return Parse(fh)
}

// Parse converts a legacy XML document read from r. Sections and entries
// without a name attribute are skipped rather than rejected; entry values
// are trimmed so pretty-printed documents convert cleanly.
func Parse(r io.Reader) (*conffile.File, error) {
	var doc xmlSettings
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("parsing legacy settings: %w", err)
	}

	f := conffile.New()
	for _, sec := range doc.Sections {
		if sec.Name == "" {
			continue
		}
		for _, ent := range sec.Entries {
			if ent.Name == "" {
				continue
			}
			f.SetString(sec.Name, ent.Name, strings.TrimSpace(ent.Value))
		}
	}
	return f, nil
}
