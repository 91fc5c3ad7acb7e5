package pathsafe

import "testing"

func TestSecureFilename(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"cat.png", "cat.png"},
		{"my file.txt", "my_file.txt"},
		{"../../etc/passwd", "passwd"},
		{`..\..\boot.ini`, "boot.ini"},
		{"/absolute/path/doc.pdf", "doc.pdf"},
		{".hidden", "hidden"},
		{"..", ""},
		{".", ""},
		{"", ""},
		{"résumé.pdf", "rsum.pdf"},
		{"weird<>|:*?.gif", "weird.gif"},
		{"trailing.", "trailing"},
	}
	for _, c := range cases {
		if got := SecureFilename(c.in); got != c.want {
			t.Errorf("SecureFilename(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestExt(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"cat.PNG", "png"},
		{"archive.tar.gz", "gz"},
		{"noext", ""},
		{"dot.", ""},
		{"report.docx", "docx"},
	}
	for _, c := range cases {
		if got := Ext(c.in); got != c.want {
			t.Errorf("Ext(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
