package descriptor

import (
	"errors"
	"testing"
)

const junitPOM = `<?xml version="1.0" encoding="UTF-8"?>
<project xmlns="http://maven.apache.org/POM/4.0.0"
         xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">
  <modelVersion>4.0.0</modelVersion>
  <groupId>junit</groupId>
  <artifactId>junit</artifactId>
  <version>4.13.2</version>
  <name>JUnit</name>
  <description>
    JUnit is a unit testing framework for Java.
  </description>
  <url>http://junit.org</url>
  <organization>
    <name>JUnit</name>
    <url>http://www.junit.org</url>
  </organization>
  <licenses>
    <license>
      <name>Eclipse Public License 1.0</name>
      <url>http://www.eclipse.org/legal/epl-v10.html</url>
      <distribution>repo</distribution>
    </license>
  </licenses>
</project>`

func TestParse(t *testing.T) {
	d, err := Parse([]byte(junitPOM))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if got := d.Coordinate().String(); got != "junit:junit:4.13.2" {
		t.Errorf("Coordinate() = %q, want junit:junit:4.13.2", got)
	}
	if want := "\n    JUnit is a unit testing framework for Java.\n  "; d.Description != want {
		t.Errorf("Description = %q, want verbatim text %q", d.Description, want)
	}
	if d.Name != "JUnit" {
		t.Errorf("Name = %q, want trimmed JUnit", d.Name)
	}
	if d.Organization == nil || d.Organization.Name != "JUnit" {
		t.Errorf("Organization = %+v, want name JUnit", d.Organization)
	}
	if len(d.Licenses) != 1 {
		t.Fatalf("len(Licenses) = %d, want 1", len(d.Licenses))
	}
	if d.Licenses[0].Name != "Eclipse Public License 1.0" {
		t.Errorf("Licenses[0].Name = %q", d.Licenses[0].Name)
	}
	if d.Licenses[0].Distribution != "repo" {
		t.Errorf("Licenses[0].Distribution = %q, want repo", d.Licenses[0].Distribution)
	}
}

func TestParse_ParentInheritance(t *testing.T) {
	data := `<project>
  <parent>
    <groupId>org.example</groupId>
    <artifactId>parent</artifactId>
    <version>2.0</version>
  </parent>
  <artifactId>child</artifactId>
</project>`

	d, err := Parse([]byte(data))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got := d.Coordinate().String(); got != "org.example:child:2.0" {
		t.Errorf("Coordinate() = %q, want org.example:child:2.0", got)
	}
	if d.Organization != nil {
		t.Errorf("Organization = %+v, want nil", d.Organization)
	}
}

func TestParse_Latin1(t *testing.T) {
	// "Bibliothèque" with è encoded as a single ISO-8859-1 byte.
	data := []byte("<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?>\n" +
		"<project><artifactId>x</artifactId><description>Biblioth\xe8que</description></project>")

	d, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if d.Description != "Bibliothèque" {
		t.Errorf("Description = %q, want Bibliothèque", d.Description)
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty", ""},
		{"not xml", "this is not xml"},
		{"wrong root", "<metadata><groupId>x</groupId></metadata>"},
		{"unknown charset", `<?xml version="1.0" encoding="x-no-such-charset"?><project/>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			if err == nil {
				t.Fatal("Parse() expected error")
			}
			if !errors.Is(err, ErrInvalidDescriptor) {
				t.Errorf("Parse() error = %v, want ErrInvalidDescriptor", err)
			}
		})
	}
}
