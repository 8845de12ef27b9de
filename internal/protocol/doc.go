// Package protocol implements the line-oriented serial link between the
// board and its companion PC process.
//
// Each line carries one compact JSON object. Inbound lines select their
// behavior with a "cmd" field:
//
//	{"cmd":"ADD_TASK","title":"Ship v1","month":"Jun","day":5,"time":"3:00 PM","priority":1}
//	{"cmd":"EDIT_TASK","id":0,"status":"Done"}
//	{"cmd":"DELETE_TASK","id":0}
//	{"cmd":"CLEAR_ALL"}
//	{"cmd":"LIST_TASKS"}
//	{"cmd":"MOVE_TASK","src":0,"dst":2}
//	{"cmd":"SET_TIME","hour":16,"minute":55}
//	{"cmd":"TIME","epoch":1718900000}
//	{"cmd":"SCREEN","state":"OFF"}
//
// The board answers with unsolicited lines:
//
//	{"tasks":[...]}
//	{"event":"duplicate_skipped","title":"Ship v1"}
//	{"cmd":"MOVE_TASK","src":0,"dst":2}
//	{"cmd":"EDIT_TASK","id":0,"status":"Done"}
//
// There are no acknowledgements, sequence numbers or retries. Lines that
// do not parse, or that name an unknown command, are dropped.
package protocol
