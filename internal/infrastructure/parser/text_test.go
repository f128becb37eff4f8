package parser

import "testing"

func TestPlainText(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "   ", want: ""},
		{name: "plain", in: "  Already   plain\ntext ", want: "Already plain text"},
		{
			name: "markup",
			in:   `<p>According to <b>officials</b>,</p><p>the study was confirmed.</p>`,
			want: "According to officials, the study was confirmed.",
		},
		{
			name: "scripts dropped",
			in:   `<div>Breaking news<script>var shocking = 1;</script><style>p{}</style></div>`,
			want: "Breaking news",
		},
		{name: "entities", in: `<p>Fish &amp; chips</p>`, want: "Fish & chips"},
		{
			name: "nested blocks",
			in:   `<div><p>The agency</p><p>said nothing.</p></div>`,
			want: "The agency said nothing.",
		},
		{name: "line break", in: `<p>line one<br>line two</p>`, want: "line one line two"},
		{name: "list items", in: `<ul><li>ever</li><li>y day</li></ul>`, want: "ever y day"},
		{name: "inline markup", in: `<p>un<em>believ</em>able</p>`, want: "unbelievable"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := PlainText(tc.in); got != tc.want {
				t.Fatalf("PlainText(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
