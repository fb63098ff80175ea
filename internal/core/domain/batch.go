package domain

// Partition splits docs into consecutive batches of batchSize.
// A batchSize of zero or less yields a single batch holding every document.
// An empty list yields no batches. Batches share the backing array of docs.
func Partition(docs []*Document, batchSize int) [][]*Document {
	if len(docs) == 0 {
		return nil
	}
	if batchSize <= 0 || batchSize >= len(docs) {
		return [][]*Document{docs}
	}

	batches := make([][]*Document, 0, (len(docs)+batchSize-1)/batchSize)
	for start := 0; start < len(docs); start += batchSize {
		end := start + batchSize
		if end > len(docs) {
			end = len(docs)
		}
		batches = append(batches, docs[start:end:end])
	}
	return batches
}

// URIs returns the URIs of the documents in order.
func URIs(docs []*Document) []string {
	uris := make([]string, len(docs))
	for i, d := range docs {
		uris[i] = d.URI
	}
	return uris
}
