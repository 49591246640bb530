package objectstore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectKey(t *testing.T) {
	now := time.UnixMilli(1700000000000)

	key := ObjectKey(CategoryIssue, "My Cool App!!", "Fix login bug", "Jane Doe", "crash log.txt", now)
	assert.Equal(t,
		"issue_attachment_file/My_Cool_App__/Fix_login_bug/Jane_Doe/1700000000000_crash_log.txt",
		key)

	key = ObjectKey(CategoryDiscussion, "proj", "discussion", "bob", "notes-v2.pdf", now)
	assert.Equal(t,
		"discussion_attachment_file/proj/discussion/bob/1700000000000_notes-v2.pdf",
		key)
}

func TestSanitizeSegment(t *testing.T) {
	assert.Equal(t, "a.b-c_d", sanitizeSegment("a.b-c d"))
	assert.Equal(t, "___", sanitizeSegment("日本語"))
	assert.Equal(t, "", sanitizeSegment(""))
	assert.Equal(t, "file_name_1_.txt", sanitizeSegment("file name(1).txt"))
}

func TestKeyFromURL(t *testing.T) {
	c := &Client{bucket: "uprojects", publicEndpoint: "https://files.example.com"}

	key, err := c.KeyFromURL("https://files.example.com/uprojects/issue_attachment_file/p/i/u/1_a.txt")
	require.NoError(t, err)
	assert.Equal(t, "issue_attachment_file/p/i/u/1_a.txt", key)

	_, err = c.KeyFromURL("https://elsewhere.example.com/uprojects/key")
	assert.Error(t, err)

	_, err = c.KeyFromURL("https://files.example.com/otherbucket/key")
	assert.Error(t, err)
}

func TestRewriteToEndpoint(t *testing.T) {
	signed := "http://minio:9000/uprojects/key?X-Amz-Signature=abc&X-Amz-Expires=300"

	out, err := rewriteToEndpoint(signed, "https://files.example.com:9443")
	require.NoError(t, err)
	assert.Equal(t, "https://files.example.com:9443/uprojects/key?X-Amz-Signature=abc&X-Amz-Expires=300", out)

	// No public endpoint configured: URL passes through untouched.
	out, err = rewriteToEndpoint(signed, "")
	require.NoError(t, err)
	assert.Equal(t, signed, out)
}
