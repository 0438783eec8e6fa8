package bufsync

import "errors"

// ErrCounterGap reports a lost buffer event. Callers recover by
// re-uploading the widget content and re-attaching, never by guessing.
var ErrCounterGap = errors.New("bufsync: change counter gap")
