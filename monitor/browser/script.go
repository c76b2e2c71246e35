package browser

// domMonitorScript runs in every document before any page script. It watches
// mutations, wraps sensitive APIs and reports each observation through the
// exposed binding as a JSON string. The event vocabulary is the closed set
// consumed by extmon.DomEventType.
const domMonitorScript = `(function () {
    if (window.__extmonDomActive) return;
    window.__extmonDomActive = true;

    function report(type, data) {
        var event = Object.assign({
            timestamp: new Date().toISOString(),
            type: type,
            url: window.location.href
        }, data);
        try {
            window.` + domBindingName + `(JSON.stringify(event));
        } catch (e) { }
    }

    var observer = new MutationObserver(function (mutations) {
        mutations.forEach(function (mutation) {
            if (mutation.type === 'childList') {
                mutation.addedNodes.forEach(function (node) {
                    if (node.nodeType !== Node.ELEMENT_NODE) return;

                    if (node.tagName === 'SCRIPT') {
                        report('script_injected', {
                            severity: 'critical',
                            src: node.src || '[inline]',
                            content: node.src ? null : (node.textContent || '').substring(0, 500)
                        });
                    }
                    if (node.tagName === 'IFRAME') {
                        report('iframe_injected', {
                            severity: 'high',
                            src: node.src,
                            hidden: node.style.display === 'none' ||
                                node.style.visibility === 'hidden' ||
                                node.width === '0' || node.height === '0'
                        });
                    }
                    if (node.tagName === 'FORM') {
                        report('form_injected', {
                            severity: 'high',
                            action: node.action,
                            method: node.method,
                            hasPasswordField: !!node.querySelector('input[type="password"]')
                        });
                    }
                    if (node.tagName === 'INPUT') {
                        report('input_injected', {
                            severity: 'medium',
                            inputType: node.type,
                            name: node.name
                        });
                    }
                    if (node.tagName === 'A' && node.href) {
                        try {
                            var linkDomain = new URL(node.href).hostname;
                            if (linkDomain !== window.location.hostname) {
                                report('link_injected', {
                                    severity: 'low',
                                    href: node.href,
                                    text: (node.textContent || '').substring(0, 100)
                                });
                            }
                        } catch (e) { }
                    }
                    if (node.style && (node.style.position === 'fixed' ||
                        node.style.position === 'absolute')) {
                        var rect = node.getBoundingClientRect ? node.getBoundingClientRect() : null;
                        if (rect && (rect.width > 300 || rect.height > 300)) {
                            report('overlay_detected', {
                                severity: 'high',
                                targetTag: node.tagName,
                                size: rect.width + 'x' + rect.height
                            });
                        }
                    }
                    if (node.querySelectorAll) {
                        node.querySelectorAll('script').forEach(function (s) {
                            report('script_injected', {
                                severity: 'critical',
                                src: s.src || '[inline]',
                                content: s.src ? null : (s.textContent || '').substring(0, 500)
                            });
                        });
                        node.querySelectorAll('iframe').forEach(function (f) {
                            report('iframe_injected', {
                                severity: 'high',
                                src: f.src,
                                hidden: f.style.display === 'none'
                            });
                        });
                    }
                });
            }

            if (mutation.type === 'attributes') {
                var target = mutation.target;
                var attr = mutation.attributeName;
                if (target.tagName === 'FORM' && attr === 'action') {
                    report('form_action_changed', {
                        severity: 'critical',
                        oldValue: mutation.oldValue,
                        newValue: target.action
                    });
                }
                if (target.tagName === 'A' && attr === 'href') {
                    report('link_href_changed', {
                        severity: 'medium',
                        oldValue: mutation.oldValue,
                        newValue: target.href
                    });
                }
                if (target.tagName === 'SCRIPT' && attr === 'src') {
                    report('script_src_changed', {
                        severity: 'critical',
                        oldValue: mutation.oldValue,
                        newValue: target.src
                    });
                }
            }
        });
    });

    observer.observe(document.documentElement, {
        childList: true,
        subtree: true,
        attributes: true,
        attributeOldValue: true,
        attributeFilter: ['href', 'src', 'action', 'onclick', 'onsubmit']
    });

    var originalAddEventListener = EventTarget.prototype.addEventListener;
    EventTarget.prototype.addEventListener = function (type, listener, options) {
        if (['keydown', 'keyup', 'keypress', 'input', 'change'].indexOf(type) !== -1) {
            if (this.tagName === 'INPUT' || this.tagName === 'TEXTAREA' ||
                this === document || this === window) {
                report('keylogger_suspect', {
                    severity: 'critical',
                    eventType: type,
                    targetTag: this.tagName || 'window/document'
                });
            }
        }
        if (type === 'submit' && this.tagName === 'FORM') {
            report('form_submit_listener', {
                severity: 'high',
                action: this.action
            });
        }
        if (['copy', 'paste', 'cut'].indexOf(type) !== -1) {
            report('clipboard_listener', {
                severity: 'high',
                eventType: type
            });
        }
        return originalAddEventListener.call(this, type, listener, options);
    };

    document.addEventListener('submit', function (e) {
        var form = e.target;
        if (!form || form.tagName !== 'FORM') return;
        var hasPassword = !!form.querySelector('input[type="password"]');
        report('form_submitted', {
            severity: 'medium',
            action: form.action,
            method: form.method,
            hasPasswordField: hasPassword
        });
    }, true);

    var originalFetch = window.fetch;
    window.fetch = function () {
        var args = arguments;
        var url = args[0] && args[0].url ? args[0].url : args[0];
        var options = args[1] || {};
        report('fetch_request', {
            severity: 'low',
            requestUrl: '' + url,
            method: options.method || 'GET',
            hasBody: !!options.body
        });
        return originalFetch.apply(this, args);
    };

    var originalXHROpen = XMLHttpRequest.prototype.open;
    XMLHttpRequest.prototype.open = function (method, url) {
        this.__extmonUrl = url;
        this.__extmonMethod = method;
        return originalXHROpen.apply(this, arguments);
    };
    var originalXHRSend = XMLHttpRequest.prototype.send;
    XMLHttpRequest.prototype.send = function (body) {
        report('xhr_request', {
            severity: 'low',
            requestUrl: this.__extmonUrl,
            method: this.__extmonMethod,
            hasBody: !!body
        });
        return originalXHRSend.apply(this, arguments);
    };

    var cookieDescriptor = Object.getOwnPropertyDescriptor(Document.prototype, 'cookie');
    if (cookieDescriptor) {
        Object.defineProperty(document, 'cookie', {
            get: function () {
                report('cookie_read', { severity: 'high' });
                return cookieDescriptor.get.call(document);
            },
            set: function (val) {
                report('cookie_write', {
                    severity: 'high',
                    newValue: ('' + val).substring(0, 100)
                });
                return cookieDescriptor.set.call(document, val);
            }
        });
    }

    ['localStorage', 'sessionStorage'].forEach(function (storageName) {
        var storage = window[storageName];
        if (!storage) return;
        var originalSetItem = storage.setItem.bind(storage);
        storage.setItem = function (key, value) {
            report('storage_write', {
                severity: 'medium',
                storage: storageName,
                key: key,
                valueLength: value ? ('' + value).length : 0
            });
            return originalSetItem(key, value);
        };
        var originalGetItem = storage.getItem.bind(storage);
        storage.getItem = function (key) {
            report('storage_read', {
                severity: 'low',
                storage: storageName,
                key: key
            });
            return originalGetItem(key);
        };
    });

    report('monitor_started', {
        severity: 'info',
        message: 'DOM monitoring active'
    });
})();`
