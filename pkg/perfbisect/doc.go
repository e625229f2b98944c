/*
Package perfbisect drives a git bisect session to find the first commit whose
measured render latency crosses a threshold.

A session can most easily be created by passing a config file to [GetConfigFromFile]
and handing the result to [NewSession], but the [Config] struct can also be populated
manually. At least the following fields have to be populated for a session to work:
  - Repository
  - PrimaryBuild & SecondaryBuild
  - Probe

After a session was acquired, the bisection can be started using [Session.Run].

For every candidate commit git bisect selects, the session checks out the commit,
syncs its submodules, builds both configured projects, runs the performance probe
and reports the resulting classification back to git bisect. A commit that cannot
be classified because one of its stages failed is skipped, never fatal.

[Session.Run] returns a [Finding], which describes the first bad commit together
with its message, date and author. Regardless of how the run ends, the bisect
session is reset and a summary of all evaluated commits is logged and written to
the log directory.
*/
package perfbisect
