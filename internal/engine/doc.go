// Package engine executes node graphs against a robot.
//
// A run walks the execution plan built by the scheduler package. Nodes run one
// at a time on a single goroutine per run: a node executes to completion before
// the next one starts, so no two nodes ever touch the run state concurrently.
// Every executed node appends one Result to the run's live result stream.
//
// # Control flow
//
// An if node runs exactly one of its then and else regions. Before the chosen
// region runs, the outputs of every node in both regions are cleared, so nodes
// of the skipped branch read as not produced for the rest of the pass.
//
// A while_loop node is evaluated before every pass of its body. It either
// continues, producing body, or exits, producing done. The outputs of the
// body's nodes are cleared when the loop is entered. A loop input fed from
// inside the body (a back-edge) whose source has not produced yet reads true
// for condition and null for the for_* inputs. Asking for more passes than the
// iteration budget fails the run with ErrLoopBudgetExceeded.
//
// # Failure and abort
//
// A node error, a panic inside a node, a loop budget overrun or the node run
// budget halt the run in StateFailed; nothing is retried. Aborting the run, or
// cancelling the context given to Start, moves it to StateAborted at the next
// node boundary. Nodes receive a context that is detached from that
// cancellation, so a node is never interrupted mid-execution.
package engine
